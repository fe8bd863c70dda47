package repository

import (
	"context"
	"fmt"
	"go.uber.org/zap"
	"net/http"
)

const (
	DefaultBaseURL     = "https://dl.google.com/android/repository"
	DefaultManifestURL = DefaultBaseURL + "/repository-11.xml"
)

// Client retrieves and parses the repository manifest.
type Client struct {
	manifestURL string
	doer        Doer
	log         *zap.SugaredLogger
}

func NewClient(manifestURL string, doer Doer, log *zap.SugaredLogger) *Client {
	return &Client{
		manifestURL: manifestURL,
		doer:        doer,
		log:         log,
	}
}

// GetManifest fetches the manifest and parses the response body as it streams in.
func (c *Client) GetManifest(ctx context.Context) (*Repository, error) {
	c.log.Debugw("Fetching manifest", "url", c.manifestURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.manifestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", c.manifestURL, err)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status error: %v", resp.StatusCode)
	}

	repo, err := ParseReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.manifestURL, err)
	}

	c.log.Debugw("Parsed manifest",
		"licenses", len(repo.Licenses),
		"ndks", len(repo.Ndks),
		"platforms", len(repo.Platforms),
		"sources", len(repo.Sources),
		"buildTools", len(repo.BuildTools),
		"platformTools", len(repo.PlatformTools),
	)

	return repo, nil
}
