package source

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Resource is an opaque encoded image: a file on disk, an upload, anything
// that can be opened more than once and carries a display name.
type Resource interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// File is a Resource backed by a path.
type File struct {
	Path string
}

func (f File) Name() string { return filepath.Base(f.Path) }

func (f File) Open() (io.ReadCloser, error) { return os.Open(f.Path) }

// Memory is a Resource held in memory, e.g. a multipart upload.
type Memory struct {
	Filename string
	Data     []byte
}

func (m Memory) Name() string { return m.Filename }

func (m Memory) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.Data)), nil
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
	".pdf":  true,
}

// HasImageExtension reports whether the file name looks like a supported input.
func HasImageExtension(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// tiffMagic covers both byte orders; http.DetectContentType has no TIFF rule.
var tiffMagic = [][]byte{[]byte("II*\x00"), []byte("MM\x00*")}

// IsImage sniffs the first bytes of a resource the way browsers do and
// accepts image/* content, TIFF and PDF documents.
func IsImage(head []byte) bool {
	for _, m := range tiffMagic {
		if bytes.HasPrefix(head, m) {
			return true
		}
	}
	ct := http.DetectContentType(head)
	return strings.HasPrefix(ct, "image/") || ct == "application/pdf"
}

// ListDir returns the supported image files of a directory sorted by name.
// A path to a single file yields just that file.
func ListDir(path string) ([]Resource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !fi.IsDir() {
		return []Resource{File{Path: path}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && HasImageExtension(entry.Name()) {
			paths = append(paths, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(paths)

	resources := make([]Resource, len(paths))
	for i, p := range paths {
		resources[i] = File{Path: p}
	}
	return resources, nil
}

// BaseName strips the last extension: "scan.page1.png" -> "scan.page1".
func BaseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
