package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/seqarchive/podarc/internal/pathutil"
)

// CreateResult summarizes one archive creation.
type CreateResult struct {
	Files int64 // regular files written
	Bytes int64 // file content bytes written
}

// Create packages dir into a tar archive at target. Internal paths are
// relative to dir's parent, so the archive's sole top-level entry is dir's
// base name. The tar is written to a temp file in the target's directory and
// renamed into place, so a failed run leaves no partial archive behind.
func Create(dir, target string, exclude *ExcludeSet) (CreateResult, error) {
	base := pathutil.BaseName(dir)

	tmpName := fmt.Sprintf(".%s.%s.podarc-tmp", filepath.Base(target), uuid.New().String()[:8])
	tmpPath := filepath.Join(filepath.Dir(target), tmpName)

	tmpFd, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return CreateResult{}, fmt.Errorf("create tmp %s: %w", tmpPath, err)
	}
	defer func() {
		_ = os.Remove(tmpPath) // no-op if rename succeeded
	}()

	result, err := writeTar(tmpFd, dir, base, exclude)
	if err != nil {
		tmpFd.Close()
		return CreateResult{}, fmt.Errorf("archive %s: %w", dir, err)
	}

	if err := tmpFd.Close(); err != nil {
		return CreateResult{}, fmt.Errorf("close tmp %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return CreateResult{}, fmt.Errorf("rename %s -> %s: %w", tmpPath, target, err)
	}

	return result, nil
}

func writeTar(w io.Writer, dir, base string, exclude *ExcludeSet) (CreateResult, error) {
	tw := tar.NewWriter(w)
	var result CreateResult

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		name := base
		if rel != "." {
			name = filepath.ToSlash(filepath.Join(base, rel))
			if exclude.Match(filepath.ToSlash(rel), d.IsDir()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			link, err = os.Readlink(path)
			if err != nil {
				return fmt.Errorf("readlink %s: %w", path, err)
			}
		}

		// Sockets, devices and other irregular entries are not archivable.
		if !info.IsDir() && !info.Mode().IsRegular() && link == "" {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return fmt.Errorf("header for %s: %w", path, err)
		}
		hdr.Name = name
		if info.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("write header %s: %w", name, err)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		n, copyErr := io.Copy(tw, f)
		f.Close()
		if copyErr != nil {
			return fmt.Errorf("write %s: %w", name, copyErr)
		}

		result.Files++
		result.Bytes += n
		return nil
	})
	if err != nil {
		return CreateResult{}, err
	}

	if err := tw.Close(); err != nil {
		return CreateResult{}, fmt.Errorf("finalize tar: %w", err)
	}
	return result, nil
}
