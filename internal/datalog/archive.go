package datalog

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Archive gzips the log file at path into path+".gz" and removes the original.
func Archive(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open log for archive: %w", err)
	}
	defer src.Close()

	target := path + ".gz"
	dst, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}

	zw, err := gzip.NewWriterLevel(dst, gzip.BestCompression)
	if err != nil {
		dst.Close()
		return "", err
	}
	zw.Name = src.Name()

	if _, err := io.Copy(zw, src); err != nil {
		zw.Close()
		dst.Close()
		return "", fmt.Errorf("compress log: %w", err)
	}
	if err := zw.Close(); err != nil {
		dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}

	src.Close()
	if err := os.Remove(path); err != nil {
		return target, fmt.Errorf("remove archived log: %w", err)
	}
	return target, nil
}
