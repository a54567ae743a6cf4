package main

import (
	"os"

	"pixelforge/internal/pixbuf"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func readRaw(path string) (*pixbuf.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return pixbuf.ReadRaw(f)
}
