package archive

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
)

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = string(b)
	}
	return out
}

func TestWriterEntries(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if _, err := w.Add("page1_merged.png", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Add("page2_merged.png", []byte("two")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	files := readZip(t, buf.Bytes())
	if len(files) != 2 || files["page1_merged.png"] != "one" || files["page2_merged.png"] != "two" {
		t.Errorf("unexpected archive content: %v", files)
	}
}

func TestWriterDeduplicatesNames(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	names := []string{"a_merged.png", "a_merged.png", "A_merged.png", "a_merged_2.png"}
	want := []string{"a_merged.png", "a_merged_2.png", "A_merged_3.png", "a_merged_2_2.png"}

	for i, n := range names {
		got, err := w.Add(n, []byte{byte(i)})
		if err != nil {
			t.Fatal(err)
		}
		if got != want[i] {
			t.Errorf("entry %d stored as %q, want %q", i, got, want[i])
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if len(readZip(t, buf.Bytes())) != 4 {
		t.Error("expected 4 distinct entries")
	}
	if got := w.Entries(); len(got) != 4 || got[3] != "a_merged_2_2.png" {
		t.Errorf("Entries() = %v", got)
	}
}

func TestEmptyArchiveIsValid(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if len(readZip(t, buf.Bytes())) != 0 {
		t.Error("expected no entries")
	}
}
