package util

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/teranos/dugout/errors"
)

var zipMagic = []byte("PK\x03\x04")

// MoveTree moves every regular file under from to the same relative path
// under to, replacing existing files. Returns the targets sorted.
func MoveTree(from, to string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(from, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		target := filepath.Join(to, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.Rename(path, target); err != nil {
			return err
		}
		files = append(files, target)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "move files into %s", to)
	}
	sort.Strings(files)
	return files, nil
}

// IsZip reports whether the file starts with a zip local file header.
func IsZip(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	head := make([]byte, len(zipMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, errors.Wrapf(err, "read %s", path)
	}
	return bytes.Equal(head, zipMagic), nil
}
