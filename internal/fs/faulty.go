package fs

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// FaultyFS is a FileSystem wrapper that injects write errors, used to
// exercise the segment writer's failure path in tests.
type FaultyFS struct {
	FS FileSystem

	mu      sync.Mutex
	err     error
	written int64
	limit   int64 // fail writes once this many bytes were written; -1 disables
	pattern string
}

// NewFaultyFS creates a new FaultyFS wrapping the provided FS (or Default if nil).
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{
		FS:    fsys,
		err:   fmt.Errorf("injected fault error"),
		limit: -1,
	}
}

// SetLimit makes writes fail after the given number of bytes across all files.
func (f *FaultyFS) SetLimit(n int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit = n
}

// FailFilesMatching makes writes fail only for files whose name contains pattern.
func (f *FaultyFS) FailFilesMatching(pattern string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pattern = pattern
	f.limit = 0
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	if f.pattern != "" && !strings.Contains(name, f.pattern) {
		return file, nil
	}
	return &faultyFile{File: file, fs: f}, nil
}

func (f *FaultyFS) Remove(name string) error             { return f.FS.Remove(name) }
func (f *FaultyFS) Rename(oldpath, newpath string) error { return f.FS.Rename(oldpath, newpath) }
func (f *FaultyFS) Stat(name string) (os.FileInfo, error) {
	return f.FS.Stat(name)
}
func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	return f.FS.MkdirAll(path, perm)
}
func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) { return f.FS.ReadDir(name) }

type faultyFile struct {
	File
	fs *FaultyFS
}

func (f *faultyFile) Write(p []byte) (int, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	if f.fs.limit >= 0 && f.fs.written+int64(len(p)) > f.fs.limit {
		return 0, f.fs.err
	}
	n, err := f.File.Write(p)
	f.fs.written += int64(n)
	return n, err
}
