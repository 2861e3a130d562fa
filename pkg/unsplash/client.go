package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "productimg/pkg/errors"
	"productimg/pkg/logger"
)

// DefaultUserAgent identifies the client to the API
const DefaultUserAgent = "productimg/1.0"

// Client talks to the Unsplash REST API
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger

	mu        sync.Mutex
	rateLimit RateLimit
}

// NewClient creates a new Unsplash API client.
// A zero timeout means the HTTP client never times out on its own.
func NewClient(accessKey string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"Authorization":  AuthorizationHeader(accessKey),
			"Accept-Version": APIVersion,
			"Accept":         "application/json",
			"User-Agent":     DefaultUserAgent,
		},
		baseURL: BaseURL,
		logger:  log,
	}
}

// SetBaseURL points the client at another API root
func (c *Client) SetBaseURL(base string) {
	if base != "" {
		c.baseURL = base
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// LastRateLimit returns the quota reported by the most recent response
func (c *Client) LastRateLimit() RateLimit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimit
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, apperrors.Wrap(apperrors.ErrorTypeNetwork, err, "request failed")
	}

	logger.LogRequest(req.Method, req.URL.String(), resp.StatusCode, duration)
	c.recordRateLimit(resp.Header)

	return resp, nil
}

// recordRateLimit stores the X-Ratelimit headers when present
func (c *Client) recordRateLimit(h http.Header) {
	limit, errLimit := strconv.Atoi(h.Get("X-Ratelimit-Limit"))
	remaining, errRemaining := strconv.Atoi(h.Get("X-Ratelimit-Remaining"))
	if errLimit != nil || errRemaining != nil {
		return
	}

	c.mu.Lock()
	c.rateLimit = RateLimit{Limit: limit, Remaining: remaining, Known: true}
	c.mu.Unlock()

	logger.LogRateLimit(limit, remaining)
}

// checkResponseStatus maps a non-200 response to a typed error
func (c *Client) checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	apiErr := apperrors.FromStatus(resp.StatusCode)
	if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-Ratelimit-Remaining") == "0" {
		apiErr = apperrors.New(apperrors.ErrorTypeRateLimit, resp.StatusCode, "hourly request quota exhausted")
	}

	// the API explains most failures in an {"errors": [...]} body
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var details apiErrors
	if json.Unmarshal(body, &details) == nil && len(details.Errors) > 0 {
		apiErr.Message = fmt.Sprintf("%s: %s", apiErr.Message, strings.Join(details.Errors, "; "))
	}

	c.logger.WarnWithFields("API returned an error", map[string]interface{}{
		"status":     resp.StatusCode,
		"url":        resp.Request.URL.String(),
		"error_type": string(apiErr.Type),
		"error":      apiErr.Message,
	})
	return apiErr
}

// getJSON performs a GET request and decodes the JSON response into target
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeUnknown, err, "failed to create request")
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeNetwork, err, "failed to read response body")
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		e := apperrors.Wrap(apperrors.ErrorTypePayload, err, "failed to parse JSON")
		e.Code = resp.StatusCode
		return e
	}

	return nil
}

// RandomPhoto asks the API for one random landscape photo matching query.
// The returned photo always has a non-empty regular URL.
func (c *Client) RandomPhoto(ctx context.Context, query string) (*Photo, error) {
	url := GetRandomPhotoURL(c.baseURL, query)

	c.logger.DebugWithFields("fetching random photo", map[string]interface{}{
		"query": query,
		"url":   url,
	})

	var photo Photo
	if err := c.getJSON(ctx, url, &photo); err != nil {
		c.logger.WarnWithFields("no photo for query", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil, err
	}

	if photo.URLs.Regular == "" {
		c.logger.WarnWithFields("photo has no regular URL", map[string]interface{}{
			"query":    query,
			"photo_id": photo.ID,
		})
		return nil, apperrors.New(apperrors.ErrorTypePayload, http.StatusOK, "response has no urls.regular")
	}

	c.logger.DebugWithFields("successfully fetched random photo", map[string]interface{}{
		"query":        query,
		"photo_id":     photo.ID,
		"photographer": photo.User.Name,
	})

	return &photo, nil
}

// TrackDownload tells Unsplash that photo was used, as the API guidelines
// require for every downloaded image. Photos without a download_location
// link are ignored.
func (c *Client) TrackDownload(ctx context.Context, photo *Photo) error {
	if photo == nil || photo.Links.DownloadLocation == "" {
		return nil
	}

	var ack struct {
		URL string `json:"url"`
	}
	if err := c.getJSON(ctx, photo.Links.DownloadLocation, &ack); err != nil {
		return err
	}

	c.logger.DebugWithFields("download tracked", map[string]interface{}{
		"photo_id": photo.ID,
	})
	return nil
}
