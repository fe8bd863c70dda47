package repository

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"hash"
	"io"
	"net/http"
	"os"
	"time"
)

const DefaultChunkSize = 2048

type FetcherConfig struct {
	// BaseURL is prefixed to relative archive urls by FetchArchive.
	BaseURL string
	// TempDir holds the download while it is verified. Empty uses os.TempDir.
	TempDir   string
	ChunkSize int
	// NewHash builds the digest compared against manifest checksums. Defaults to sha1.
	NewHash func() hash.Hash
	// ProgressOutput receives a progress bar when set.
	ProgressOutput io.Writer
}

// Fetcher downloads an archive, verifies its checksum and unpacks it.
type Fetcher struct {
	cfg      FetcherConfig
	doer     Doer
	unpacker Unpacker
	log      *zap.SugaredLogger
}

func NewFetcher(cfg FetcherConfig, doer Doer, unpacker Unpacker, log *zap.SugaredLogger) *Fetcher {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.NewHash == nil {
		cfg.NewHash = sha1.New
	}

	return &Fetcher{
		cfg:      cfg,
		doer:     doer,
		unpacker: unpacker,
		log:      log,
	}
}

// FetchArchive resolves the archive against the configured base url and fetches it.
func (f *Fetcher) FetchArchive(ctx context.Context, archive Archive, destDir string) error {
	return f.Fetch(ctx, archive.AbsoluteURL(f.cfg.BaseURL), archive.Checksum, destDir)
}

// Fetch downloads url into a temporary file while hashing it, and unpacks it into
// destDir only once the digest equals expectedChecksum. The temporary file is
// removed on every path. Errors are *FetchError, possibly combined with a cleanup
// failure.
func (f *Fetcher) Fetch(ctx context.Context, url string, expectedChecksum string, destDir string) (err error) {
	f.log.Infow("Downloading", "url", url)
	started := time.Now()

	transportErr := func(err error) error {
		return &FetchError{Kind: FetchTransport, URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return transportErr(err)
	}

	resp, err := f.doer.Do(req)
	if err != nil {
		return transportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return transportErr(fmt.Errorf("status error: %v", resp.StatusCode))
	}

	tmp, err := os.CreateTemp(f.cfg.TempDir, "sdkfetch-*.download")
	if err != nil {
		return transportErr(err)
	}
	closed := false
	defer func() {
		if !closed {
			err = multierr.Append(err, tmp.Close())
		}
		if rerr := os.Remove(tmp.Name()); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			err = multierr.Append(err, rerr)
		}
	}()

	digest := f.cfg.NewHash()
	sinks := []io.Writer{tmp, digest}

	if f.cfg.ProgressOutput != nil {
		bar := progressbar.NewOptions64(
			resp.ContentLength,
			progressbar.OptionSetWriter(f.cfg.ProgressOutput),
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionFullWidth(),
		)
		defer bar.Finish()
		sinks = append(sinks, bar)
	}

	w := io.MultiWriter(sinks...)
	buf := make([]byte, f.cfg.ChunkSize)
	var size int64

	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return transportErr(werr)
			}
			size += int64(n)
		}

		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return transportErr(rerr)
		}
	}

	// Ensure flushed before the unpacker opens it
	closed = true
	if err := tmp.Close(); err != nil {
		return transportErr(err)
	}

	actual := hex.EncodeToString(digest.Sum(nil))
	if actual != expectedChecksum {
		f.log.Warnw("Hash mismatch", "url", url, "expected", expectedChecksum, "actual", actual)
		return &FetchError{Kind: FetchChecksumMismatch, URL: url, Expected: expectedChecksum, Actual: actual}
	}

	f.log.Infow("Verified",
		"url", url,
		"size", humanize.Bytes(uint64(size)),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	if err := f.unpacker.Unpack(ctx, tmp.Name(), destDir); err != nil {
		return &FetchError{Kind: FetchUnpack, URL: url, Err: err}
	}

	f.log.Infow("Unpacked", "url", url, "destination", destDir)
	return nil
}
