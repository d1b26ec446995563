package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound indicates the source file does not exist for the requested
// year. Fatal for that year only; multi-year runs continue.
var ErrNotFound = errors.New("source file not found")

// FileName returns the canonical unified source file name for a year.
func FileName(year int) string {
	return fmt.Sprintf("playing-%d.csv", year)
}

// Fetcher retrieves raw source bytes for a year, preferring a pre-placed
// local file under LocalDir and falling back to BaseURL over HTTP.
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	localDir   string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher with a token-bucket limit on remote requests.
func NewFetcher(baseURL, localDir string, requestsPerMinute int, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Fetcher{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		localDir:   localDir,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// Fetch returns a reader over the unified source file for the year.
// The caller owns the returned ReadCloser.
func (f *Fetcher) Fetch(ctx context.Context, year int) (io.ReadCloser, error) {
	name := FileName(year)

	if f.localDir != "" {
		path := filepath.Join(f.localDir, name)
		file, err := os.Open(path)
		if err == nil {
			f.logger.Info("Using local source file", "path", path)
			return file, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("open local source %s: %w", path, err)
		}
		// Fall through to remote fetch.
	}

	if f.baseURL == "" {
		return nil, fmt.Errorf("%w: %s (no local file, no base URL)", ErrNotFound, name)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := f.baseURL + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	f.logger.Info("Fetched source file", "url", url)
	return resp.Body, nil
}
