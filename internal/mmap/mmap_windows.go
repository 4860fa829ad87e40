//go:build windows

package mmap

import (
	"io"
	"os"
)

// Windows fallback: read the whole file into memory instead of mapping it.
// Segment files are read rarely (recovery, verification), so the copy is
// acceptable there.
func osMap(f *os.File, size int) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

func osUnmap([]byte) error { return nil }
