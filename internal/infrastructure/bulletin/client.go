package bulletin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/renameio/v2"
	"github.com/praio-service/internal/domain/repository"
	"go.uber.org/zap"
)

var (
	// ErrLinkNotFound - the index page has no usable bulletin link
	ErrLinkNotFound = errors.New("bulletin link not found")
	// ErrParse - the document or its tables could not be read
	ErrParse = errors.New("bulletin parse error")
)

// Fetcher - resilient GET returning the raw body
type Fetcher interface {
	Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error)
}

// Options - publisher endpoints and download retry policy
type Options struct {
	IndexURL         string
	DownloadAttempts int
	DownloadBackoff  time.Duration
}

type client struct {
	pages     Fetcher
	documents Fetcher
	tables    TableReader
	opts      Options
	logger    *zap.Logger
}

// NewClient creates the bulletin publisher client. pages serves the index page,
// documents serves the bulletin download.
func NewClient(opts Options, pages, documents Fetcher, tables TableReader, logger *zap.Logger) repository.BulletinRepository {
	if opts.DownloadAttempts < 1 {
		opts.DownloadAttempts = 1
	}
	if tables == nil {
		tables = NewPDFTableReader()
	}
	return &client{
		pages:     pages,
		documents: documents,
		tables:    tables,
		opts:      opts,
		logger:    logger,
	}
}

func (c *client) LatestURL(ctx context.Context) (string, error) {
	page, err := c.pages.Get(ctx, c.opts.IndexURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch bulletin index: %w", err)
	}

	href, err := SelectLink(page)
	if err != nil {
		return "", err
	}

	resolved, err := resolve(c.opts.IndexURL, href)
	if err != nil {
		return "", fmt.Errorf("%w: bad href %q", ErrLinkNotFound, href)
	}

	c.logger.Info("Latest bulletin located", zap.String("url", resolved))
	return resolved, nil
}

// Download retries with a linear backoff of DownloadBackoff * attempt.
func (c *client) Download(ctx context.Context, documentURL, path string) error {
	var lastErr error
	for attempt := 1; attempt <= c.opts.DownloadAttempts; attempt++ {
		body, err := c.documents.Get(ctx, documentURL, nil)
		if err == nil {
			if err := renameio.WriteFile(path, body, 0o644); err != nil {
				return fmt.Errorf("store bulletin: %w", err)
			}
			c.logger.Info("Bulletin downloaded",
				zap.String("path", path),
				zap.Int("bytes", len(body)))
			return nil
		}

		lastErr = err
		c.logger.Warn("Bulletin download attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == c.opts.DownloadAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.opts.DownloadBackoff * time.Duration(attempt)):
		}
	}

	return fmt.Errorf("download bulletin after %d attempts: %w", c.opts.DownloadAttempts, lastErr)
}

func (c *client) Extract(path string) (map[string]bool, error) {
	rows, err := c.tables.Rows(path)
	if err != nil {
		return map[string]bool{}, err
	}
	return ExtractCompliance(rows), nil
}

func resolve(base, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(ref).String(), nil
}
