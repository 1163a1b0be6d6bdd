package mangadex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"mangapages/pkg/config"
	errs "mangapages/pkg/errors"
	"mangapages/pkg/logger"
	"mangapages/pkg/ratelimit"
	"mangapages/pkg/retry"
)

// Client represents a MangaDex v2 API client
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a MangaDex client whose transport retries requests to
// the configured host according to retryCfg. A nil limiter disables rate
// limiting.
func NewClient(cfg config.MangaDexConfig, retryCfg config.RetryConfig, limiter ratelimit.Limiter, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.NewTokenBucket(0, 1)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	host, err := hostOf(baseURL)
	if err != nil {
		return nil, err
	}

	policy := policyFromConfig(retryCfg)
	policy.AttemptTimeout = cfg.Timeout
	transport := retry.NewTransport(http.DefaultTransport, host, policy, log)

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "mangapages/1.0"
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
		baseURL: baseURL,
		limiter: limiter,
		logger:  log,
	}, nil
}

// policyFromConfig applies the configured values over the default policy.
// An empty status forcelist keeps the default of HTTP 500.
func policyFromConfig(cfg config.RetryConfig) retry.Policy {
	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.MaxRetries
	policy.RetryNetworkErrors = cfg.RetryNetworkErrs
	policy.Backoff = &retry.FactorBackoff{
		Factor:   cfg.BackoffFactor,
		MaxDelay: cfg.MaxBackoff,
	}
	if len(cfg.StatusForcelist) > 0 {
		policy.StatusForcelist = cfg.StatusForcelist
	}
	return policy
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

		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, fmt.Errorf("request to %s cancelled: %w", req.URL, ctxErr)
		}

		errType := errs.TypeOf(err)
		if errType == errs.ErrorTypeUnknown {
			errType = errs.ErrorTypeNetwork
		}
		code := 0
		var apiErr *errs.Error
		if errors.As(err, &apiErr) {
			code = apiErr.Code
		}
		return nil, &errs.Error{
			Type:    errType,
			Message: fmt.Sprintf("request failed: %v", err),
			Code:    code,
			Err:     err,
		}
	}

	logger.LogRequest(c.logger, req.Method, req.URL.String(), resp.StatusCode, float64(duration.Microseconds())/1000)

	return resp, nil
}

// GetJSON performs a rate limited GET request and decodes the JSON response
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Err:     err,
		}
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
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	return nil
}

// checkResponseStatus maps non-2xx responses to typed errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := errs.FromStatus(resp.StatusCode, resp.Request.URL.String())
	c.logger.WarnWithFields("unexpected API status", map[string]interface{}{
		"status": resp.StatusCode,
		"type":   string(apiErr.Type),
		"url":    resp.Request.URL.String(),
	})
	return apiErr
}

// envelopeError reports an error status carried inside a 200 response body
func envelopeError(code int, status, url string) error {
	if code >= 400 {
		apiErr := errs.FromStatus(code, url)
		if status != "" {
			apiErr.Message = fmt.Sprintf("%s (status %q)", apiErr.Message, status)
		}
		return apiErr
	}
	return nil
}

// GetManga fetches a manga's title and chapter list
func (c *Client) GetManga(ctx context.Context, mangaID int) (*Manga, error) {
	url := GetMangaURL(c.baseURL, mangaID)

	c.logger.DebugWithFields("fetching manga", map[string]interface{}{
		"manga_id": mangaID,
		"url":      url,
	})

	var response MangaResponse
	if err := c.GetJSON(ctx, url, &response); err != nil {
		c.logger.ErrorWithFields("failed to fetch manga", map[string]interface{}{
			"manga_id": mangaID,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("failed to fetch manga %d: %w", mangaID, err)
	}
	if err := envelopeError(response.Code, response.Status, url); err != nil {
		return nil, fmt.Errorf("failed to fetch manga %d: %w", mangaID, err)
	}

	manga := response.toManga()
	if manga.ID == 0 {
		manga.ID = mangaID
	}

	c.logger.DebugWithFields("successfully fetched manga", map[string]interface{}{
		"manga_id": mangaID,
		"title":    manga.Title,
		"chapters": len(manga.Chapters),
	})

	return manga, nil
}

// GetChapter fetches a chapter's page list
func (c *Client) GetChapter(ctx context.Context, chapterID string) (*Chapter, error) {
	url := GetChapterURL(c.baseURL, chapterID)

	var response ChapterResponse
	if err := c.GetJSON(ctx, url, &response); err != nil {
		c.logger.ErrorWithFields("failed to fetch chapter", map[string]interface{}{
			"chapter_id": chapterID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to fetch chapter %s: %w", chapterID, err)
	}
	if err := envelopeError(response.Code, response.Status, url); err != nil {
		return nil, fmt.Errorf("failed to fetch chapter %s: %w", chapterID, err)
	}

	id := chapterID
	if response.Data.ID != 0 {
		id = strconv.Itoa(response.Data.ID)
	}

	return &Chapter{
		ID:    id,
		Hash:  response.Data.Hash,
		Pages: response.Data.Pages,
	}, nil
}
