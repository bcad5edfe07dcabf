// Package wikipedia implements driven.Encyclopedia against the MediaWiki
// action API of a Wikipedia language edition.
package wikipedia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
	"github.com/custodia-labs/wikirec/internal/logger"
	"github.com/custodia-labs/wikirec/internal/metrics"
)

// Ensure Client implements the interface.
var _ driven.Encyclopedia = (*Client)(nil)

// Default configuration values.
const (
	DefaultLanguage  = "ru"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "wikirec/1.0 (https://github.com/custodia-labs/wikirec)"
)

// Config holds configuration for the client.
type Config struct {
	// Language is the edition subdomain (default: ru).
	Language string

	// APIURL overrides https://{lang}.wikipedia.org/w/api.php.
	APIURL string

	// ArticleBaseURL overrides https://{lang}.wikipedia.org.
	ArticleBaseURL string

	// UserAgent identifies the client, as Wikimedia policy requires.
	UserAgent string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond and Burst configure throttling.
	RequestsPerSecond float64
	Burst             int
}

// Client talks to the MediaWiki API.
type Client struct {
	http        *http.Client
	apiURL      string
	articleBase string
	userAgent   string
	limiter     *RateLimiter
}

// NewClient creates a client with defaults applied.
func NewClient(cfg Config) *Client {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.ArticleBaseURL == "" {
		cfg.ArticleBaseURL = "https://" + cfg.Language + ".wikipedia.org"
	}
	if cfg.APIURL == "" {
		cfg.APIURL = cfg.ArticleBaseURL + "/w/api.php"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout},
		apiURL:      cfg.APIURL,
		articleBase: strings.TrimRight(cfg.ArticleBaseURL, "/"),
		userAgent:   cfg.UserAgent,
		limiter:     NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
}

// ArticleURL returns the canonical page-id link to an article.
func (c *Client) ArticleURL(pageID string) string {
	return c.articleBase + "/wiki?curid=" + url.QueryEscape(pageID)
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title  string `json:"title"`
			PageID int64  `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
}

// SearchTitle returns the best full-text match for query.
func (c *Client) SearchTitle(ctx context.Context, query string) (domain.ArticleRef, bool, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srlimit":  {"1"},
		"srinfo":   {"totalhits"},
		"srprop":   {""},
		"srsearch": {query},
	}

	var resp searchResponse
	if err := c.call(ctx, "search", params, &resp); err != nil {
		return domain.ArticleRef{}, false, err
	}
	if len(resp.Query.Search) == 0 {
		return domain.ArticleRef{}, false, nil
	}

	hit := resp.Query.Search[0]
	return domain.ArticleRef{
		Title:  hit.Title,
		PageID: strconv.FormatInt(hit.PageID, 10),
	}, true, nil
}

type page struct {
	Title     string            `json:"title"`
	Extract   string            `json:"extract"`
	PageProps map[string]string `json:"pageprops"`
	Missing   *string           `json:"missing"`
	Invalid   *string           `json:"invalid"`
}

type pagesResponse struct {
	Query struct {
		Pages map[string]page `json:"pages"`
	} `json:"query"`
}

// FetchSummary returns the first paragraph of the article intro.
// Disambiguation pages and articles without an intro are not ok.
func (c *Client) FetchSummary(ctx context.Context, pageID string) (string, bool, error) {
	if err := validatePageID(pageID); err != nil {
		return "", false, err
	}

	params := url.Values{
		"action":  {"query"},
		"prop":    {"extracts|pageprops"},
		"ppprop":  {"disambiguation"},
		"exintro": {"1"},
		"exlimit": {"1"},
		"pageids": {pageID},
	}

	var resp pagesResponse
	if err := c.call(ctx, "summary", params, &resp); err != nil {
		return "", false, err
	}

	p, ok := resp.Query.Pages[pageID]
	if !ok || p.Missing != nil || p.Invalid != nil {
		return "", false, nil
	}
	if _, disambiguation := p.PageProps["disambiguation"]; disambiguation {
		return "", false, nil
	}

	summary := firstParagraph(p.Extract)
	return summary, summary != "", nil
}

// TitleByPageID resolves a page id to its current title.
func (c *Client) TitleByPageID(ctx context.Context, pageID string) (string, bool, error) {
	if err := validatePageID(pageID); err != nil {
		return "", false, err
	}

	params := url.Values{
		"action":  {"query"},
		"prop":    {"info"},
		"pageids": {pageID},
	}

	var resp pagesResponse
	if err := c.call(ctx, "title", params, &resp); err != nil {
		return "", false, err
	}

	p, ok := resp.Query.Pages[pageID]
	if !ok || p.Missing != nil || p.Invalid != nil || p.Title == "" {
		return "", false, nil
	}
	return p.Title, true, nil
}

func validatePageID(pageID string) error {
	if pageID == "" {
		return fmt.Errorf("%w: empty page id", domain.ErrInvalidInput)
	}
	for _, r := range pageID {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: page id %q is not numeric", domain.ErrInvalidInput, pageID)
		}
	}
	return nil
}

type apiError struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// call performs one throttled GET and decodes the JSON body into out.
func (c *Client) call(ctx context.Context, op string, params url.Values, out any) (err error) {
	start := time.Now()
	defer func() { metrics.RecordWikiRequest(op, time.Since(start), err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("format", "json")
	reqURL := c.apiURL + "?" + params.Encode()
	logger.Debug("wikipedia %s: %s", op, reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", domain.ErrUpstream, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrUpstream, op, err)
	}
	defer resp.Body.Close()
	c.limiter.Observe(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read response: %v", domain.ErrUpstream, op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d", domain.ErrUpstream, op, resp.StatusCode)
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
		return fmt.Errorf("%w: %s: %s: %s", domain.ErrUpstream, op, apiErr.Error.Code, apiErr.Error.Info)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", domain.ErrUpstream, op, err)
	}
	return nil
}
