package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/bloodbridge/procurement/internal/domain/model"
)

// ErrSourceUnknown indicates the directory doesn't know the source.
var ErrSourceUnknown = errors.New("source not listed in directory")

// Client resolves the display name of a supplying organization or hospital.
// The resolved name is denormalized onto the order at creation time.
type Client interface {
	ResolveName(ctx context.Context, sourceType model.SourceType, sourceID string) (string, error)
}

// HTTPClient implements Client via the directory HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// response mirrors JSON payload from the directory service.
type response struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewHTTPClient creates an HTTP directory client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse directory url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("directory url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// ResolveName queries the directory for the source's current display name.
func (c *HTTPClient) ResolveName(ctx context.Context, sourceType model.SourceType, sourceID string) (string, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/", string(sourceType)+"s", sourceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		var data response
		if err := json.Unmarshal(body, &data); err != nil {
			return "", err
		}
		return data.Name, nil
	case http.StatusNotFound, http.StatusNoContent:
		return "", ErrSourceUnknown
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("directory request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return "", fmt.Errorf("directory error: %s", resp.Status)
	}
}

// NoopClient is used when no directory service is configured; the
// draft-supplied source name is kept as-is.
type NoopClient struct{}

// ResolveName always reports the source as unknown.
func (NoopClient) ResolveName(context.Context, model.SourceType, string) (string, error) {
	return "", ErrSourceUnknown
}
