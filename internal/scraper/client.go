// Package scraper provides the yhdm catalog client: search suggestions,
// search results, detail pages, filter listings and the homepage sections.
// Parse functions are pure document-to-record transforms; the Client
// methods wrap them with the site's GET-with-Referer fetch conventions.
package scraper

import (
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/yhdm-go/yhdm/internal/util"
)

const (
	// DefaultBaseURL is the catalog site root.
	DefaultBaseURL = "https://www.yhdmz.org"

	// DefaultUserAgent mimics a desktop browser; the site rejects bare
	// client strings.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/121.0"
)

// Client scrapes the yhdm catalog pages.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the catalog site root.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithHTTPClient overrides the transport. Timeout policy belongs to the
// injected client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger injects the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a catalog client with the shared pooled HTTP client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: util.GetSharedClient(),
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured catalog site root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// decorateRequest sets the headers every catalog request carries.
func (c *Client) decorateRequest(req *http.Request, referer string) {
	req.Header.Set("User-Agent", c.userAgent)
	if referer == "" {
		referer = c.baseURL
	}
	req.Header.Set("Referer", referer)
}

// getDocument fetches pageURL and parses it. Non-success status is a
// transport failure, fatal for the enclosing call.
func (c *Client) getDocument(pageURL, referer string) (*goquery.Document, error) {
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	c.decorateRequest(req, referer)

	c.logger.Debug("fetching page", "url", pageURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to perform request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("server returned: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}
	return doc, nil
}
