// Package probe measures directory trees and filesystem free space. All
// functions are read-only.
package probe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirSize returns the total byte size of all regular files under root.
// A missing root is an error; unreadable entries below it propagate.
func DirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("measure %s: %w", root, err)
	}
	if total < 0 {
		return 0, fmt.Errorf("measure %s: negative size %d", root, total)
	}
	return total, nil
}

// CountFiles returns the number of regular files under root, recursively.
func CountFiles(root string) (int64, error) {
	var count int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", root, err)
	}
	return count, nil
}

// FileSize returns the byte size of a single file.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FreeSpace returns the available bytes on the filesystem holding path.
// If path does not exist, the nearest existing ancestor is probed instead,
// so a dry run can plan against a destination that hasn't been created yet.
func FreeSpace(path string) (int64, error) {
	p := filepath.Clean(path)
	for {
		free, err := statfsAvail(p)
		if err == nil {
			if free < 0 {
				return 0, fmt.Errorf("free space on %s: negative measurement %d", p, free)
			}
			return free, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("free space on %s: %w", p, err)
		}
		parent := filepath.Dir(p)
		if parent == p {
			return 0, fmt.Errorf("free space on %s: %w", path, err)
		}
		p = parent
	}
}
