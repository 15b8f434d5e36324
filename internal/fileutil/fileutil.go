package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile streams src to dst with mode 0o644, replacing dst atomically.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return writeAtomic(dst, 0o644, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

// MirrorFile copies src to dst and stamps dst with the source modification
// time. It reports false without copying when dst already matches src by
// size and modification time.
func MirrorFile(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("stat source: %w", err)
	}
	if Unchanged(srcInfo, dst) {
		return false, nil
	}
	if err := CopyFile(src, dst); err != nil {
		return false, err
	}
	mtime := srcInfo.ModTime()
	if err := os.Chtimes(dst, mtime, mtime); err != nil {
		return true, fmt.Errorf("stamp modification time: %w", err)
	}
	return true, nil
}

// Unchanged reports whether dst exists with the same size and modification
// time as the described source.
func Unchanged(src fs.FileInfo, dst string) bool {
	info, err := os.Stat(dst)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Size() == src.Size() && info.ModTime().Equal(src.ModTime())
}

// WriteFile replaces path with data atomically. When the file already holds
// identical bytes it is left untouched so its modification time is stable.
func WriteFile(path string, data []byte) error {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return writeAtomic(path, 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func writeAtomic(path string, mode os.FileMode, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
