// Package archive packages batch results into a single zip file.
package archive

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// DefaultName is the suggested file name of a batch archive.
const DefaultName = "merged_images.zip"

// Writer streams entries into a zip archive. Entry names are kept unique:
// a repeated name gets a "_2", "_3", ... suffix before its extension.
type Writer struct {
	zw      *zip.Writer
	names   map[string]int
	entries []string
	now     func() time.Time
}

// NewWriter starts an archive on w. Close must be called to finish it.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		zw:    zip.NewWriter(w),
		names: make(map[string]int),
		now:   time.Now,
	}
}

// Add writes one entry and returns the name it was stored under.
// PNG data is already compressed, so entries are stored, not deflated.
func (w *Writer) Add(name string, data []byte) (string, error) {
	name = w.unique(name)
	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: w.now(),
	}
	f, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return "", fmt.Errorf("archive entry %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("archive entry %s: %w", name, err)
	}
	w.entries = append(w.entries, name)
	return name, nil
}

// Entries lists the names written so far, in order.
func (w *Writer) Entries() []string {
	out := make([]string, len(w.entries))
	copy(out, w.entries)
	return out
}

// Close writes the central directory. An archive without entries is still valid.
func (w *Writer) Close() error {
	return w.zw.Close()
}

func (w *Writer) unique(name string) string {
	key := strings.ToLower(name)
	n := w.names[key]
	w.names[key] = n + 1
	if n == 0 {
		return name
	}

	ext := ""
	if i := strings.LastIndex(name, "."); i > 0 {
		ext = name[i:]
	}
	candidate := fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n+1, ext)
	return w.unique(candidate)
}
