package listing

import (
	"fmt"
	"io/fs"
	"os"
)

// DirReader enumerates the entries of a directory.
//
// An error with no entries means the directory itself cannot be read. An
// error alongside entries means enumeration stopped part way. Per-entry
// metadata is resolved lazily through fs.DirEntry.Info.
type DirReader interface {
	ReadDir(name string) ([]fs.DirEntry, error)
}

// OSDirReader reads directories from the local filesystem, keeping the
// enumeration order reported by the operating system.
type OSDirReader struct{}

// ReadDir implements DirReader.
func (OSDirReader) ReadDir(name string) ([]fs.DirEntry, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", name)
	}

	return f.ReadDir(-1)
}
