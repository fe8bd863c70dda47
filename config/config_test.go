package config

import (
	"github.com/csnewman/droidmole/sdkfetch/repository"
	"github.com/matryer/is"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sdkfetch.ini")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	is := is.New(t)

	path := writeConfig(t, `
[repository]
manifest-url = http://mirror.local/repository-11.xml
base-url = http://mirror.local
host-os = windows
host-bits = 32

[download]
temp-dir = /var/tmp
chunk-size = 4096
requests-per-second = 2.5
progress = false
unpacker = unzip
`)

	cfg, err := Load(path, false)
	is.NoErr(err)
	is.Equal(cfg.ManifestURL, "http://mirror.local/repository-11.xml")
	is.Equal(cfg.BaseURL, "http://mirror.local")
	is.Equal(cfg.HostOS, repository.HostWindows)
	is.Equal(cfg.HostBits, repository.Bits32)
	is.Equal(cfg.TempDir, "/var/tmp")
	is.Equal(cfg.ChunkSize, 4096)
	is.Equal(cfg.RequestsPerSecond, 2.5)
	is.Equal(cfg.Progress, false)
	is.Equal(cfg.Unpacker, UnpackerUnzip)

	fc := cfg.FetcherConfig()
	is.Equal(fc.BaseURL, "http://mirror.local")
	is.Equal(fc.ProgressOutput, nil)
}

func TestLoad_Defaults(t *testing.T) {
	is := is.New(t)

	cfg, err := Load(writeConfig(t, "[repository]\n"), false)
	is.NoErr(err)
	is.Equal(cfg, Default())
	is.NoErr(cfg.Validate())

	cfg, err = Load("", false)
	is.NoErr(err)
	is.Equal(cfg.ManifestURL, repository.DefaultManifestURL)
	is.Equal(cfg.ChunkSize, repository.DefaultChunkSize)
}

func TestLoad_Missing(t *testing.T) {
	is := is.New(t)

	missing := filepath.Join(t.TempDir(), "absent.ini")

	cfg, err := Load(missing, true)
	is.NoErr(err)
	is.Equal(cfg, Default())

	_, err = Load(missing, false)
	is.True(err != nil)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"host-os":      "[repository]\nhost-os = solaris\n",
		"host-bits":    "[repository]\nhost-bits = 16\n",
		"chunk-size":   "[download]\nchunk-size = lots\n",
		"zero-chunk":   "[download]\nchunk-size = 0\n",
		"negative-rps": "[download]\nrequests-per-second = -1\n",
		"empty-url":    "[repository]\nbase-url =\n",
		"unpacker":     "[download]\nunpacker = tar\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)

			_, err := Load(writeConfig(t, content), false)
			is.True(err != nil)
		})
	}
}

func TestConfig_NewUnpacker(t *testing.T) {
	is := is.New(t)

	_, ok := Default().NewUnpacker().(*repository.DetectUnpacker)
	is.True(ok)

	cfg := Default()
	cfg.Unpacker = UnpackerUnzip
	cmd, ok := cfg.NewUnpacker().(repository.CommandUnpacker)
	is.True(ok)
	is.Equal(cmd.Name, "unzip")
}

func TestDefaultPath(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	path := DefaultPath()
	is.True(filepath.IsAbs(path))
	is.Equal(filepath.Base(path), "sdkfetch.ini")
	is.Equal(filepath.Base(filepath.Dir(path)), "sdkfetch")
}

func TestHostOS(t *testing.T) {
	is := is.New(t)

	is.Equal(hostOS("darwin"), repository.HostMacOSX)
	is.Equal(hostOS("windows"), repository.HostWindows)
	is.Equal(hostOS("linux"), repository.HostLinux)
	is.Equal(hostOS("freebsd"), repository.HostLinux)
}
