package ingest

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/customHttpClient"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

// Fetched is a source materialised on local disk.
type Fetched struct {
	Path  string
	Title string
	// Temporary files are removed once ingestion is done with them.
	Temporary bool
}

type Fetcher interface {
	Fetch(ctx context.Context, src Source) (Fetched, error)
}

type HTTPFetcher struct {
	client   *http.Client
	pdfBase  string
	apiBase  string
	tempDir  string
	maxBytes int64
	logger   *logger_i.Logger
}

type FetcherOption func(*HTTPFetcher)

func WithArxivEndpoints(pdfBase, apiBase string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.pdfBase = pdfBase
		f.apiBase = apiBase
	}
}

func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

func WithTempDir(dir string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.tempDir = dir
	}
}

func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:   customHttpClient.NewClient(config.FetchTimeout),
		pdfBase:  config.ArxivPdfURL,
		apiBase:  config.ArxivAPIURL,
		tempDir:  os.TempDir(),
		maxBytes: config.MaxDocumentBytes,
		logger:   logger_i.NewLogger("Fetcher"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, src Source) (Fetched, error) {
	log := f.logger.WithContext(ctx)
	switch src.Kind {
	case SourceFile:
		if _, err := os.Stat(src.Locator); err != nil {
			return Fetched{}, fmt.Errorf("%w: %v", ErrInvalidSource, err)
		}
		return Fetched{Path: src.Locator, Temporary: src.Uploaded}, nil

	case SourceArxiv:
		path, err := f.download(ctx, strings.TrimSuffix(f.pdfBase, "/")+"/"+src.CanonicalId, ".pdf")
		if err != nil {
			return Fetched{}, err
		}
		title, err := f.arxivTitle(ctx, src.CanonicalId)
		if err != nil {
			log.Warn("arxiv title lookup failed, falling back to detection", "id", src.CanonicalId, "error", err)
		}
		return Fetched{Path: path, Title: title, Temporary: true}, nil

	case SourceURL:
		ext := filepath.Ext(src.FileName)
		if ext == "" {
			ext = ".pdf"
		}
		path, err := f.download(ctx, src.Locator, ext)
		if err != nil {
			return Fetched{}, err
		}
		return Fetched{Path: path, Temporary: true}, nil
	}
	return Fetched{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidSource, src.Kind)
}

func (f *HTTPFetcher) download(ctx context.Context, target string, ext string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: unexpected status %d", target, resp.StatusCode)
	}

	file, err := os.CreateTemp(f.tempDir, "paper-*"+ext)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer file.Close()

	n, err := io.Copy(file, io.LimitReader(resp.Body, f.maxBytes+1))
	if err == nil && n > f.maxBytes {
		err = fmt.Errorf("document larger than %d bytes", f.maxBytes)
	}
	if err != nil {
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("saving %s: %w", target, err)
	}
	return file.Name(), nil
}

type atomFeed struct {
	Entries []struct {
		Title string `xml:"title"`
	} `xml:"entry"`
}

func (f *HTTPFetcher) arxivTitle(ctx context.Context, id string) (string, error) {
	endpoint := f.apiBase + "?id_list=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("arxiv api status %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return "", fmt.Errorf("decoding arxiv feed: %w", err)
	}
	if len(feed.Entries) == 0 {
		return "", fmt.Errorf("arxiv id %s not found", id)
	}
	return strings.Join(strings.Fields(feed.Entries[0].Title), " "), nil
}
