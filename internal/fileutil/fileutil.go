package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// MoveFile renames src to dst, falling back to a verified copy plus delete
// when the rename crosses filesystems.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyVerified(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyVerified copies src to dst and confirms the bytes that landed on disk
// match the source digest. dst is removed on any failure or mismatch.
func copyVerified(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	want := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, want))
	if err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	got, size, err := hashFile(dst)
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if size != written {
		_ = os.Remove(dst)
		return fmt.Errorf("copy %s: wrote %d bytes, found %d on disk", dst, written, size)
	}
	if !bytes.Equal(want.Sum(nil), got) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy %s: digest mismatch after copy", dst)
	}
	return nil
}

func hashFile(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, 0, err
	}
	return h.Sum(nil), n, nil
}
