package vlr

import (
	"context"
	"net/url"
	"strings"
	"time"
	"vct-status/internal/config"

	crerr "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

var ErrFetch = crerr.New("fetch failed")

const maxRedirects = 5

// PageFetcher returns the body of a page on the source site.
type PageFetcher interface {
	Fetch(ctx context.Context, target string) (string, error)
	URL(path string) string
}

type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	cooldown  time.Duration
	client    *fasthttp.Client
	sleep     func(time.Duration)
	logger    zerolog.Logger
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.FetchTimeout,
		cooldown:  cfg.FetchCooldown,
		client: &fasthttp.Client{
			MaxConnsPerHost:     4,
			ReadTimeout:         cfg.FetchTimeout,
			WriteTimeout:        cfg.FetchTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
			// vlr.gg pages are large
			ReadBufferSize: 16 * 1024,
		},
		sleep:  time.Sleep,
		logger: logger,
	}
}

// URL resolves a site path like "/matches" against the configured base URL. Absolute URLs are
// returned unchanged.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Fetch GETs target and returns the body. Every call, failed or not, is followed by the
// configured cooldown before it returns.
func (c *Client) Fetch(ctx context.Context, target string) (string, error) {
	defer c.sleep(c.cooldown)

	target = c.URL(target)
	c.logger.Info().Str("url", target).Msg("fetching page")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	current := target
	for hop := 0; ; hop++ {
		req.Reset()
		resp.Reset()
		req.SetRequestURI(current)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error().Err(err).Str("url", current).Msg("request failed")
			return "", crerr.Mark(crerr.Wrapf(err, "GET %s", current), ErrFetch)
		}

		if !fasthttp.StatusCodeIsRedirect(resp.StatusCode()) {
			break
		}
		if hop >= maxRedirects {
			return "", crerr.Wrapf(ErrFetch, "GET %s: too many redirects", target)
		}
		next, err := resolve(current, string(resp.Header.Peek(fasthttp.HeaderLocation)))
		if err != nil {
			return "", crerr.Mark(crerr.Wrapf(err, "GET %s: bad redirect", current), ErrFetch)
		}
		current = next
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		c.logger.Error().Int("status", status).Str("url", current).Msg("unexpected status")
		return "", crerr.Wrapf(ErrFetch, "GET %s: status %d", current, status)
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		return "", crerr.Mark(crerr.Wrapf(err, "GET %s: decode body", current), ErrFetch)
	}

	c.logger.Debug().Str("url", current).Int("bytes", len(body)).Msg("page fetched")
	return string(body), nil
}

func resolve(base, ref string) (string, error) {
	if ref == "" {
		return "", crerr.New("empty location")
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}
