package source

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"bufio"          // For sniffing archive magic bytes
	"bytes"          // For comparing magic bytes
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/xi2/xz"          // For reading .xz compressed data

	"cw-installer/internal/logger"
)

// Archive formats understood by ExtractArchive.
const (
	formatZip   = "zip"
	format7z    = "7z"
	formatTar   = "tar"
	formatTarGz = "tar.gz"
	formatTarBz = "tar.bz2"
	formatTarXz = "tar.xz"
)

// Magic numbers used when the file name carries no usable extension.
var magics = []struct {
	format string
	prefix []byte
}{
	{formatTarGz, []byte{0x1f, 0x8b}},
	{formatZip, []byte("PK\x03\x04")},
	{formatTarXz, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	{format7z, []byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c}},
	{formatTarBz, []byte("BZh")},
}

// ExtractArchive unpacks src into dest and returns the top-level entry of the archive.
// The format is chosen by extension, falling back to magic-byte detection.
func ExtractArchive(src, dest string) (string, error) {
	format := formatFromName(src)
	if format == "" {
		sniffed, err := sniffFormat(src)
		if err != nil {
			return "", err
		}
		format = sniffed
	}
	logger.Debug("[DEBUG] Extracting %s (%s) to %s\n", src, format, dest)

	switch format {
	case formatZip:
		return extractZip(src, dest)
	case format7z:
		return extract7z(src, dest)
	default:
		return extractTarArchive(src, dest, format)
	}
}

func formatFromName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return formatZip
	case strings.HasSuffix(lower, ".7z"):
		return format7z
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return formatTarGz
	case strings.HasSuffix(lower, ".tar.bz2"):
		return formatTarBz
	case strings.HasSuffix(lower, ".tar.xz"):
		return formatTarXz
	case strings.HasSuffix(lower, ".tar"):
		return formatTar
	}
	return ""
}

func sniffFormat(src string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head, _ := bufio.NewReader(f).Peek(8)
	for _, m := range magics {
		if bytes.HasPrefix(head, m.prefix) {
			return m.format, nil
		}
	}
	return "", fmt.Errorf("unsupported archive format: %s", filepath.Base(src))
}

// safeJoin resolves name inside dest and refuses entries that would escape it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return target, nil
}

// topLevelOf returns the first path component of an archive entry name.
func topLevelOf(name string) string {
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")
	if i := strings.Index(name, "/"); i >= 0 {
		return name[:i]
	}
	return name
}

// writeEntry copies r into target, creating parent directories.
func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if mode.Perm() == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// extractTarArchive handles tar and compressed tar variants
func extractTarArchive(src, dest, format string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var reader io.Reader = f
	switch format {
	case formatTarGz:
		gr, err := gzip.NewReader(f)
		if err != nil {
			return "", err
		}
		defer gr.Close()
		reader = gr
	case formatTarBz:
		reader = bzip2.NewReader(f)
	case formatTarXz:
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return "", err
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	var topLevel string

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		// GitHub archives start with a pax global header that carries no file.
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		if topLevel == "" {
			topLevel = topLevelOf(hdr.Name)
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return "", err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return "", err
			}
		default:
			logger.Debug("[DEBUG] Skipping archive entry %s (type %c)\n", hdr.Name, hdr.Typeflag)
		}
	}
	return filepath.Join(dest, topLevel), nil
}

// extractZip extracts a .zip archive
func extractZip(src, dest string) (string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var topLevel string
	for _, f := range r.File {
		if topLevel == "" {
			topLevel = topLevelOf(f.Name)
		}
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return "", err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		err = writeEntry(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dest, topLevel), nil
}

// extract7z handles .7z extraction using the sevenzip library
func extract7z(src, dest string) (string, error) {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	var topLevel string
	for _, f := range r.File {
		if topLevel == "" {
			topLevel = topLevelOf(f.Name)
		}
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return "", err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		err = writeEntry(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dest, topLevel), nil
}
