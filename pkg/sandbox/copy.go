package sandbox

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyTree copies every file and directory of src into dst,
// overwriting existing files. Permission bits are preserved with
// owner write added, so read-only sources (such as embedded
// files) stay editable in the sandbox.
func CopyTree(src fs.FS, dst string) error {
	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(path))

		info, err := d.Info()
		if err != nil {
			return err
		}
		perm := info.Mode().Perm() | 0200

		if d.IsDir() {
			return os.MkdirAll(target, perm|0100)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(src, path, target, perm)
	})
}

func copyFile(src fs.FS, path, target string, perm fs.FileMode) error {
	in, err := src.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile only applies perm on create.
	return os.Chmod(target, perm)
}
