package repository

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/pierrec/lz4/v4"
	"github.com/u-root/u-root/pkg/cpio"
	"github.com/u-root/u-root/pkg/uzip"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
)

// Unpacker extracts a verified archive into destDir.
type Unpacker interface {
	Unpack(ctx context.Context, archivePath string, destDir string) error
}

type UnpackerFunc func(ctx context.Context, archivePath string, destDir string) error

func (f UnpackerFunc) Unpack(ctx context.Context, archivePath string, destDir string) error {
	return f(ctx, archivePath, destDir)
}

var ErrUnknownFormat = errors.New("unknown archive format")

var (
	zipMagic       = []byte("PK\x03\x04")
	lz4Magic       = []byte{0x04, 0x22, 0x4d, 0x18}
	lz4LegacyMagic = []byte{0x02, 0x21, 0x4c, 0x18}
)

// DetectUnpacker picks an unpacker from the archive's leading bytes.
type DetectUnpacker struct {
	Zip Unpacker
	Lz4 Unpacker
}

func NewDetectUnpacker() *DetectUnpacker {
	return &DetectUnpacker{
		Zip: ZipUnpacker{},
		Lz4: Lz4CpioUnpacker{},
	}
}

func (d *DetectUnpacker) Unpack(ctx context.Context, archivePath string, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}

	header := make([]byte, 4)
	_, err = io.ReadFull(f, header)
	f.Close()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	switch {
	case bytes.Equal(header, zipMagic):
		return d.Zip.Unpack(ctx, archivePath, destDir)
	case bytes.Equal(header, lz4Magic), bytes.Equal(header, lz4LegacyMagic):
		return d.Lz4.Unpack(ctx, archivePath, destDir)
	default:
		return fmt.Errorf("%w: header %x", ErrUnknownFormat, header)
	}
}

// ZipUnpacker extracts zip archives in process.
type ZipUnpacker struct{}

func (ZipUnpacker) Unpack(ctx context.Context, archivePath string, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}

	var names, parents []string
	for _, f := range r.File {
		if err := checkEntry(f.Name); err != nil {
			r.Close()
			return err
		}
		names = append(names, f.Name)
		if !f.FileInfo().IsDir() {
			parents = append(parents, path.Dir(entryPath(f.Name)))
		}
	}
	r.Close()

	for _, name := range names {
		if err := checkLinks(destDir, name); err != nil {
			return err
		}
	}

	// Entries are written without creating their parents
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}
	for _, dir := range parents {
		if err := os.MkdirAll(filepath.Join(destDir, filepath.FromSlash(dir)), 0755); err != nil {
			return err
		}
	}

	return uzip.FromZip(archivePath, destDir)
}

// CommandUnpacker runs an external extraction tool. Args builds its arguments,
// defaulting to unzip.
type CommandUnpacker struct {
	Name string
	Args func(archivePath string, destDir string) []string
}

func NewUnzipCommand() CommandUnpacker {
	return CommandUnpacker{
		Name: "unzip",
		Args: func(archivePath string, destDir string) []string {
			return []string{"-q", "-o", "-d", destDir, archivePath}
		},
	}
}

func (c CommandUnpacker) Unpack(ctx context.Context, archivePath string, destDir string) error {
	name := c.Name
	args := c.Args
	if name == "" {
		def := NewUnzipCommand()
		name, args = def.Name, def.Args
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	out, err := exec.CommandContext(ctx, name, args(archivePath, destDir)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Lz4CpioUnpacker extracts lz4 compressed newc cpio images, such as system image
// ramdisks.
type Lz4CpioUnpacker struct{}

func (Lz4CpioUnpacker) Unpack(ctx context.Context, archivePath string, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	// Decompress fully as the cpio reader needs random access
	image, err := io.ReadAll(lz4.NewReader(f))
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}

	archive, err := cpio.ArchiveFromReader(cpio.Newc.Reader(bytes.NewReader(image)))
	if err != nil {
		return fmt.Errorf("read cpio: %w", err)
	}

	for _, name := range archive.Order {
		if err := checkEntry(name); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	for _, name := range archive.Order {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec := archive.Files[name]
		if entryPath(name) == "." {
			continue
		}

		if err := checkLinks(destDir, rec.Name); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Join(destDir, filepath.Dir(rec.Name)), 0755); err != nil {
			return err
		}
		if err := cpio.CreateFileInRoot(rec, destDir, false); err != nil {
			return fmt.Errorf("create %s: %w", rec.Name, err)
		}
	}

	return nil
}

func entryPath(name string) string {
	return path.Clean(strings.TrimPrefix(filepath.ToSlash(name), "/"))
}

// checkEntry rejects entry names that would land outside the destination.
func checkEntry(name string) error {
	clean := entryPath(name)
	if clean == "." {
		return nil
	}
	if !filepath.IsLocal(filepath.FromSlash(clean)) {
		return fmt.Errorf("archive entry %q escapes destination", name)
	}
	return nil
}

// checkLinks rejects name when it, or a directory above it, is already a symlink
// under destDir.
func checkLinks(destDir string, name string) error {
	p := destDir
	for _, part := range strings.Split(entryPath(name), "/") {
		if part == "." {
			continue
		}

		p = filepath.Join(p, part)
		fi, err := os.Lstat(p)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("archive entry %q passes through symlink %s", name, p)
		}
	}
	return nil
}
