package pipeline

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
)

type fileReader struct {
	*os.File
	uri fyne.URI
}

func (f *fileReader) URI() fyne.URI { return f.uri }

type fileWriter struct {
	*os.File
	uri fyne.URI
}

func (f *fileWriter) URI() fyne.URI { return f.uri }

// OpenFile opens a local file as a fyne.URIReadCloser without needing a
// running fyne application.
func OpenFile(path string) (fyne.URIReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &fileReader{File: f, uri: storage.NewFileURI(path)}, nil
}

// CreateFile creates or truncates a local file as a fyne.URIWriteCloser.
func CreateFile(path string) (fyne.URIWriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &fileWriter{File: f, uri: storage.NewFileURI(path)}, nil
}
