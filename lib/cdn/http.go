// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package cdn

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ohchase/blizztools/lib/hashid"
)

// DefaultMaxObjectSize bounds object reads when HTTPConfig leaves
// MaxObjectSize unset: 1 GiB.
const DefaultMaxObjectSize int64 = 1 << 30

// maxErrorBody bounds how much of an error response is kept for the
// error message.
const maxErrorBody = 4 << 10

// HTTPConfig configures an HTTPFetcher.
type HTTPConfig struct {
	// BaseURL is the CDN root that object paths are appended to, as
	// built by [BaseURL]. Required.
	BaseURL string

	// HTTPClient is used for all requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// MaxObjectSize bounds each response body. Defaults to
	// DefaultMaxObjectSize.
	MaxObjectSize int64

	// Logger receives one debug record per request. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// HTTPFetcher fetches objects and patch service tables over HTTP.
type HTTPFetcher struct {
	baseURL       string
	httpClient    *http.Client
	maxObjectSize int64
	logger        *slog.Logger
}

// NewHTTPFetcher creates a fetcher from config.
func NewHTTPFetcher(config HTTPConfig) (*HTTPFetcher, error) {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("cdn: base URL is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("cdn: base URL must be http or https (got %q)", baseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	maxObjectSize := config.MaxObjectSize
	if maxObjectSize <= 0 {
		maxObjectSize = DefaultMaxObjectSize
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPFetcher{
		baseURL:       baseURL,
		httpClient:    httpClient,
		maxObjectSize: maxObjectSize,
		logger:        logger,
	}, nil
}

// BaseURL returns the CDN root the fetcher reads from.
func (f *HTTPFetcher) BaseURL() string {
	return f.baseURL
}

// Fetch downloads one object.
func (f *HTTPFetcher) Fetch(ctx context.Context, kind Kind, key hashid.ID) ([]byte, error) {
	data, err := f.get(ctx, f.baseURL+"/"+Path(kind, key))
	if err != nil {
		return nil, fmt.Errorf("fetching %s %s: %w", kind, key, err)
	}
	return data, nil
}

// FetchText downloads a text document from an absolute URL, such as a
// patch service table built with [PatchURL].
func (f *HTTPFetcher) FetchText(ctx context.Context, url string) (string, error) {
	data, err := f.get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	response, err := f.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		return nil, &StatusError{URL: url, StatusCode: response.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, f.maxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(data)) > f.maxObjectSize {
		return nil, fmt.Errorf("reading %s: body exceeds %d bytes", url, f.maxObjectSize)
	}

	f.logger.Debug("fetched object",
		"url", url,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	return data, nil
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	URL        string
	StatusCode int

	// Body is the start of the response body, for diagnostics.
	Body string
}

func (err *StatusError) Error() string {
	message := fmt.Sprintf("GET %s: HTTP %d", err.URL, err.StatusCode)
	if err.Body != "" {
		message += ": " + err.Body
	}
	return message
}

// Is matches ErrNotFound for 404 responses.
func (err *StatusError) Is(target error) bool {
	return target == ErrNotFound && err.StatusCode == http.StatusNotFound
}
