// Package gallery is the HTTP client for the gallery backend.
package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mmcdole/pixdeck/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	baseRetryDelay = 500 * time.Millisecond
)

// Options configures a Client
type Options struct {
	BaseURL           string // e.g. https://gallery.example.com/api/v1
	Token             string // Sent as a bearer token when set
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables throttling
	Burst             int
}

// Client implements domain.GalleryClient over the gallery REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewClient creates a new gallery API client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:    limiter,
		retryDelay: baseRetryDelay,
		logger:     logger,
	}
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs an HTTP request against the gallery API.
// GETs retry with exponential backoff on 5xx; writes and other failures return immediately.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Wait before retry (exponential backoff)
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "url", reqURL)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		c.logger.Debug("gallery request", "method", method, "url", reqURL, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("gallery request failed", "error", err, "url", reqURL)
			return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrNetwork, err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return respBody, nil
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, domain.ErrAuthFailed
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%s %s: %w", method, path, domain.ErrNotFound)
		case resp.StatusCode >= 500:
			lastErr = parseServerError(resp.StatusCode, respBody)
			// Writes go out once; a 5xx may arrive after the server stored them
			if method != http.MethodGet {
				c.logger.Error("gallery write failed", "status", resp.StatusCode, "method", method, "path", path)
				return nil, lastErr
			}
			c.logger.Warn("gallery server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", maxRetries,
				"path", path,
			)
			continue
		default:
			serverErr := parseServerError(resp.StatusCode, respBody)
			c.logger.Error("gallery request error", "status", resp.StatusCode, "error", serverErr, "path", path)
			return nil, serverErr
		}
	}

	c.logger.Error("gallery request failed after retries", "error", lastErr, "url", reqURL)
	return nil, lastErr
}

// parseServerError normalizes an error body. Bodies that are not an envelope
// fall back to the status text.
func parseServerError(status int, body []byte) *domain.ServerError {
	var env ErrorEnvelope
	_ = json.Unmarshal(body, &env)

	serverErr := &domain.ServerError{Status: status, Code: env.Error, Message: env.Message}
	if serverErr.Code == "" {
		serverErr.Code = "HTTP " + strconv.Itoa(status)
	}
	if serverErr.Message == "" {
		serverErr.Message = strings.TrimSpace(string(body))
	}
	if serverErr.Message == "" {
		serverErr.Message = http.StatusText(status)
	}
	return serverErr
}

// validID reports whether id can name a gallery resource
func validID(id string) bool {
	return uuid.Validate(id) == nil
}

// SearchImages returns one page of image ids for word
func (c *Client) SearchImages(ctx context.Context, q domain.ImageQuery) (*domain.SearchPage, error) {
	query := url.Values{}
	query.Set("word", q.Word)
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	query.Set("offset", strconv.Itoa(q.Offset))
	if q.AlbumChance {
		query.Set("albumChance", "true")
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/traq/messages/search/images", query, nil)
	if err != nil {
		return nil, err
	}

	var resp SearchImagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return MapSearchPage(resp), nil
}

func (c *Client) GetImageDetail(ctx context.Context, id string) (*domain.ImageDetail, error) {
	if !validID(id) {
		return nil, fmt.Errorf("image %q: %w", id, domain.ErrNotFound)
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/images/"+id, nil, nil)
	if err != nil {
		return nil, err
	}

	var dto ImageDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return MapImage(dto), nil
}

func (c *Client) GetAlbums(ctx context.Context, filter domain.AlbumFilter) ([]domain.AlbumItem, error) {
	query := url.Values{}
	if filter.CreatorID != "" {
		query.Set("creator", filter.CreatorID)
	}
	if filter.Before != nil {
		query.Set("before_date", filter.Before.UTC().Format(time.RFC3339))
	}
	if filter.After != nil {
		query.Set("after_date", filter.After.UTC().Format(time.RFC3339))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		query.Set("offset", strconv.Itoa(filter.Offset))
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/albums", query, nil)
	if err != nil {
		return nil, err
	}

	var dtos []AlbumItemDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return MapAlbumItems(dtos), nil
}

func (c *Client) GetAlbum(ctx context.Context, id string) (*domain.Album, error) {
	if !validID(id) {
		return nil, fmt.Errorf("album %q: %w", id, domain.ErrNotFound)
	}
	body, err := c.doRequest(ctx, http.MethodGet, "/albums/"+id, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeAlbum(body)
}

func (c *Client) CreateAlbum(ctx context.Context, req domain.CreateAlbumRequest) (*domain.Album, error) {
	if req.Images == nil {
		req.Images = []string{}
	}
	body, err := c.doRequest(ctx, http.MethodPost, "/albums", nil, req)
	if err != nil {
		return nil, err
	}
	return decodeAlbum(body)
}

func (c *Client) UpdateAlbum(ctx context.Context, id string, req domain.UpdateAlbumRequest) (*domain.Album, error) {
	if !validID(id) {
		return nil, fmt.Errorf("album %q: %w", id, domain.ErrNotFound)
	}
	body, err := c.doRequest(ctx, http.MethodPut, "/albums/"+id, nil, req)
	if err != nil {
		return nil, err
	}
	return decodeAlbum(body)
}

func (c *Client) DeleteAlbum(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("album %q: %w", id, domain.ErrNotFound)
	}
	_, err := c.doRequest(ctx, http.MethodDelete, "/albums/"+id, nil, nil)
	return err
}

func decodeAlbum(body []byte) (*domain.Album, error) {
	var dto AlbumDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return MapAlbum(dto), nil
}
