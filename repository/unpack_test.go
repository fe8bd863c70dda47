package repository

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"github.com/matryer/is"
	"github.com/pierrec/lz4/v4"
	"github.com/u-root/u-root/pkg/cpio"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "archive")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func cpioFile(name string, content string) cpio.Record {
	return cpio.Record{
		ReaderAt: bytes.NewReader([]byte(content)),
		Info: cpio.Info{
			Mode:     0100644,
			NLink:    1,
			FileSize: uint64(len(content)),
			Name:     name,
		},
	}
}

func cpioDir(name string) cpio.Record {
	return cpio.Record{
		ReaderAt: bytes.NewReader(nil),
		Info: cpio.Info{
			Mode:  040755,
			NLink: 2,
			Name:  name,
		},
	}
}

func cpioLink(name string, target string) cpio.Record {
	return cpio.Record{
		ReaderAt: bytes.NewReader([]byte(target)),
		Info: cpio.Info{
			Mode:     0120777,
			NLink:    1,
			FileSize: uint64(len(target)),
			Name:     name,
		},
	}
}

// cpioImage writes recs in order as an lz4 compressed newc archive.
func cpioImage(t *testing.T, recs ...cpio.Record) []byte {
	t.Helper()

	var raw bytes.Buffer
	bw := bufio.NewWriter(&raw)
	w := cpio.Newc.Writer(bw)

	for i, rec := range recs {
		rec.Ino = uint64(i + 1)
		if err := w.WriteRecord(rec); err != nil {
			t.Fatal(err)
		}
	}

	if err := cpio.WriteTrailer(w); err != nil {
		t.Fatal(err)
	}
	if err := bw.Flush(); err != nil {
		t.Fatal(err)
	}

	var compressed bytes.Buffer
	zw := lz4.NewWriter(&compressed)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return compressed.Bytes()
}

func ramdiskBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()

	recs := []cpio.Record{cpioDir("system")}
	for name, content := range files {
		recs = append(recs, cpioFile(name, content))
	}
	return cpioImage(t, recs...)
}

func TestZipUnpacker(t *testing.T) {
	is := is.New(t)

	path := writeTemp(t, zipBytes(t, map[string]string{
		"build-tools/aapt":     "aapt",
		"build-tools/lib/x.so": "x",
	}))
	dest := filepath.Join(t.TempDir(), "nested", "sdk")

	is.NoErr(ZipUnpacker{}.Unpack(context.Background(), path, dest))

	data, err := os.ReadFile(filepath.Join(dest, "build-tools", "lib", "x.so"))
	is.NoErr(err)
	is.Equal(string(data), "x")

	data, err = os.ReadFile(filepath.Join(dest, "build-tools", "aapt"))
	is.NoErr(err)
	is.Equal(string(data), "aapt")
}

func TestZipUnpacker_RejectsEscapingEntries(t *testing.T) {
	is := is.New(t)

	root := t.TempDir()
	path := writeTemp(t, zipBytes(t, map[string]string{"../evil": "x"}))
	dest := filepath.Join(root, "sdk")

	is.True(ZipUnpacker{}.Unpack(context.Background(), path, dest) != nil)

	_, err := os.Stat(filepath.Join(root, "evil"))
	is.True(errors.Is(err, os.ErrNotExist))
}

func TestZipUnpacker_RejectsExistingSymlinks(t *testing.T) {
	is := is.New(t)

	outside := t.TempDir()
	dest := t.TempDir()
	is.NoErr(os.Symlink(outside, filepath.Join(dest, "platform-tools")))

	path := writeTemp(t, zipBytes(t, map[string]string{"platform-tools/adb": "adb"}))
	is.True(ZipUnpacker{}.Unpack(context.Background(), path, dest) != nil)

	_, err := os.Stat(filepath.Join(outside, "adb"))
	is.True(errors.Is(err, os.ErrNotExist))
}

func TestLz4CpioUnpacker(t *testing.T) {
	is := is.New(t)

	path := writeTemp(t, ramdiskBytes(t, map[string]string{
		"system/build.prop": "ro.product.cpu.abi=x86_64\n",
	}))
	dest := t.TempDir()

	is.NoErr(Lz4CpioUnpacker{}.Unpack(context.Background(), path, dest))

	data, err := os.ReadFile(filepath.Join(dest, "system", "build.prop"))
	is.NoErr(err)
	is.Equal(string(data), "ro.product.cpu.abi=x86_64\n")
}

func TestLz4CpioUnpacker_RejectsEscapingEntries(t *testing.T) {
	is := is.New(t)

	path := writeTemp(t, ramdiskBytes(t, map[string]string{"system/../../evil": "x"}))
	dest := filepath.Join(t.TempDir(), "sdk")

	is.True(Lz4CpioUnpacker{}.Unpack(context.Background(), path, dest) != nil)

	_, err := os.Stat(dest)
	is.True(errors.Is(err, os.ErrNotExist))
}

func TestLz4CpioUnpacker_Symlinks(t *testing.T) {
	is := is.New(t)

	path := writeTemp(t, cpioImage(t,
		cpioDir("system"),
		cpioFile("system/init", "init"),
		cpioLink("init", "/system/init"),
	))
	dest := t.TempDir()

	is.NoErr(Lz4CpioUnpacker{}.Unpack(context.Background(), path, dest))

	target, err := os.Readlink(filepath.Join(dest, "init"))
	is.NoErr(err)
	is.Equal(target, "/system/init")
}

func TestLz4CpioUnpacker_RejectsSymlinkTraversal(t *testing.T) {
	is := is.New(t)

	outside := t.TempDir()
	path := writeTemp(t, cpioImage(t,
		cpioLink("vendor", outside),
		cpioFile("vendor/pwned", "x"),
	))
	dest := t.TempDir()

	is.True(Lz4CpioUnpacker{}.Unpack(context.Background(), path, dest) != nil)

	_, err := os.Stat(filepath.Join(outside, "pwned"))
	is.True(errors.Is(err, os.ErrNotExist))
}

func TestCommandUnpacker(t *testing.T) {
	is := is.New(t)

	path := writeTemp(t, []byte("payload"))
	dest := filepath.Join(t.TempDir(), "sdk")

	copyCmd := CommandUnpacker{
		Name: "sh",
		Args: func(archivePath string, destDir string) []string {
			return []string{"-c", `cp "$0" "$1/copied"`, archivePath, destDir}
		},
	}
	is.NoErr(copyCmd.Unpack(context.Background(), path, dest))

	data, err := os.ReadFile(filepath.Join(dest, "copied"))
	is.NoErr(err)
	is.Equal(string(data), "payload")

	failCmd := CommandUnpacker{
		Name: "sh",
		Args: func(string, string) []string {
			return []string{"-c", "echo broken >&2; exit 3"}
		},
	}
	err = failCmd.Unpack(context.Background(), path, dest)
	is.True(err != nil)
	is.True(bytes.Contains([]byte(err.Error()), []byte("broken")))
}

func TestDetectUnpacker(t *testing.T) {
	is := is.New(t)

	var picked string
	record := func(name string) Unpacker {
		return UnpackerFunc(func(context.Context, string, string) error {
			picked = name
			return nil
		})
	}
	d := &DetectUnpacker{Zip: record("zip"), Lz4: record("lz4")}

	is.NoErr(d.Unpack(context.Background(), writeTemp(t, zipBytes(t, map[string]string{"a": "b"})), t.TempDir()))
	is.Equal(picked, "zip")

	is.NoErr(d.Unpack(context.Background(), writeTemp(t, ramdiskBytes(t, nil)), t.TempDir()))
	is.Equal(picked, "lz4")

	err := d.Unpack(context.Background(), writeTemp(t, []byte("\x1f\x8b\x08\x00gzip")), t.TempDir())
	is.True(errors.Is(err, ErrUnknownFormat))

	err = d.Unpack(context.Background(), writeTemp(t, []byte("PK")), t.TempDir())
	is.True(err != nil)
}
