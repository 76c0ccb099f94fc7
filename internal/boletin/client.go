// Package boletin talks to the Boletín Concursal: session bootstrap with CSRF
// capture, the paginated remates listings, and notice document downloads.
package boletin

import (
	"bytes"
	"context"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"sjsage522/remateworker/pkg/errors"
)

const (
	defaultBaseURL   = "https://boletinconcursal.cl"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0 Safari/537.36"
	defaultTimeout = 30 * time.Second
)

// Options configures a bulletin client. Zero values fall back to the
// bulletin's public host, a browser User-Agent and a 30s request timeout.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client is an HTTP client for the bulletin. It carries the cookie jar the
// session rides on; tokens live in the Session a Bootstrap call returns.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient builds a bulletin client from opts.
func NewClient(opts Options) (*Client, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.NewConfiguration("invalid bulletin base URL: "+baseURL, err)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetHeader("User-Agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsed.Hostname()))
	client.SetTimeout(timeout)

	return &Client{http: client, baseURL: baseURL}, nil
}

// Bootstrap loads the landing page and captures the CSRF token pair from its
// meta tags. It is the only constructor of Session values, so no listing or
// download request can ever go out without a token.
func (c *Client) Bootstrap(ctx context.Context) (*Session, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(landingPath)
	if err != nil {
		return nil, errors.NewHTTP("boletin", 0, "landing page request failed", err)
	}
	if !res.IsSuccess() {
		return nil, errors.NewHTTP("boletin", res.StatusCode(), "landing page returned error", nil)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, errors.NewAuthentication("boletin", "cannot parse landing page", err)
	}

	token := doc.Find("meta[name=_csrf]").AttrOr("content", "")
	headerName := doc.Find("meta[name=_csrf_header]").AttrOr("content", "")
	if token == "" || headerName == "" {
		return nil, errors.NewAuthentication("boletin", "landing page exposes no csrf token", nil)
	}

	return &Session{client: c, token: token, tokenHeader: headerName}, nil
}
