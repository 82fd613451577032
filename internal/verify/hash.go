package verify

import (
	"archive/tar"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// ChecksumMismatch records one archive member whose content differs from the
// source file.
type ChecksumMismatch struct {
	Member  string
	SrcHash string
	ArcHash string
}

// HashFile computes the BLAKE3 hash of the file at path, returning the
// hex-encoded digest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ChecksumArchive streams the archive once and compares each regular
// member's BLAKE3 digest against the corresponding source file under dir's
// parent. Members whose source file is gone are reported with an empty
// SrcHash. Returns the number of members checked.
func ChecksumArchive(dir, archivePath string) (int64, []ChecksumMismatch, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	parent := filepath.Dir(filepath.Clean(dir))

	var checked int64
	var mismatches []ChecksumMismatch
	buf := make([]byte, 32*1024)

	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return checked, mismatches, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		h := blake3.New()
		if _, err := io.CopyBuffer(h, tr, buf); err != nil {
			return checked, mismatches, fmt.Errorf("hash member %s: %w", hdr.Name, err)
		}
		arcHash := hex.EncodeToString(h.Sum(nil))

		srcPath := filepath.Join(parent, filepath.FromSlash(strings.TrimPrefix(hdr.Name, "./")))
		srcHash, err := HashFile(srcPath)
		if err != nil {
			mismatches = append(mismatches, ChecksumMismatch{Member: hdr.Name, ArcHash: arcHash})
			checked++
			continue
		}

		if srcHash != arcHash {
			mismatches = append(mismatches, ChecksumMismatch{
				Member:  hdr.Name,
				SrcHash: srcHash,
				ArcHash: arcHash,
			})
		}
		checked++
	}

	return checked, mismatches, nil
}

// ChecksumFlat compares each OK-classified file from a flat comparison by
// content hash, upgrading silent size-equal corruption to a mismatch.
func ChecksumFlat(dir, dest string, diffs []FileDiff) ([]ChecksumMismatch, error) {
	var mismatches []ChecksumMismatch
	for _, fd := range diffs {
		if fd.Status != StatusOK {
			continue
		}
		srcHash, err := HashFile(filepath.Join(dir, fd.RelPath))
		if err != nil {
			return mismatches, err
		}
		dstHash, err := HashFile(filepath.Join(dest, filepath.Base(fd.RelPath)))
		if err != nil {
			return mismatches, err
		}
		if srcHash != dstHash {
			mismatches = append(mismatches, ChecksumMismatch{
				Member:  fd.RelPath,
				SrcHash: srcHash,
				ArcHash: dstHash,
			})
		}
	}
	return mismatches, nil
}
