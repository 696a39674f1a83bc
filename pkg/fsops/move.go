// Package fsops provides the filesystem primitives the trash subsystem
// delegates its byte-level work to: rename-with-fallback moves and
// collision-free destination naming, all over an afero.Fs so tests can run
// against an in-memory filesystem.
package fsops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
)

// Move relocates src to dst, preferring an atomic rename.
//
// On a cross-device rename error it falls back to a recursive copy followed
// by a recursive delete of the source. The fallback is not atomic: a crash in
// the middle can leave both a partial copy and the original. The source is
// only removed after the copy fully succeeded, so the entry is never lost.
func Move(fsys afero.Fs, src, dst string) error {
	err := fsys.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return fmt.Errorf("failed to move %s: %w", src, err)
	}

	if err := CopyAll(fsys, src, dst); err != nil {
		return fmt.Errorf("cross-device copy of %s failed: %w", src, err)
	}
	if err := fsys.RemoveAll(src); err != nil {
		return fmt.Errorf("failed to remove %s after copy: %w", src, err)
	}
	return nil
}

// CopyAll recursively copies a file or directory tree.
func CopyAll(fsys afero.Fs, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(fsys, src, dst, info.Mode())
	}

	if err := fsys.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return err
	}
	entries, err := afero.ReadDir(fsys, src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcEntry := filepath.Join(src, entry.Name())
		dstEntry := filepath.Join(dst, entry.Name())
		if err := CopyAll(fsys, srcEntry, dstEntry); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(fsys afero.Fs, src, dst string, mode os.FileMode) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// isCrossDevice reports whether a rename failed because source and
// destination sit on different filesystems.
func isCrossDevice(err error) bool {
	if errors.Is(err, syscall.EXDEV) {
		return true
	}
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV)
}

// DirSize returns the cumulative size of a file or directory tree.
func DirSize(fsys afero.Fs, path string) (int64, error) {
	var total int64
	err := afero.Walk(fsys, path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
