package render

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"sync"
	"time"
	"vct-status/internal/constants"

	crerr "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	_ "golang.org/x/image/webp"
)

// ImageCache downloads remote images once per run. Entries are never evicted; a cache lives
// as long as the command that created it.
type ImageCache struct {
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger

	mu    sync.Mutex
	items map[string]image.Image
}

// NewImageCache resolves relative image paths against baseURL.
func NewImageCache(baseURL string, logger zerolog.Logger) *ImageCache {
	return &ImageCache{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     8,
			ReadTimeout:         constants.ImageTimeout,
			WriteTimeout:        constants.ImageTimeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
		logger: logger,
		items:  make(map[string]image.Image),
	}
}

func (c *ImageCache) resolve(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.baseURL + ref
}

// Get returns the decoded image at ref, or nil when it cannot be downloaded or decoded.
// Failures are not cached. A nil cache never returns an image.
func (c *ImageCache) Get(ctx context.Context, ref string) image.Image {
	if c == nil || strings.TrimSpace(ref) == "" {
		return nil
	}
	url := c.resolve(ref)

	c.mu.Lock()
	img, ok := c.items[url]
	c.mu.Unlock()
	if ok {
		return img
	}

	img, err := c.download(ctx, url)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", url).Msg("failed to load image")
		return nil
	}

	c.mu.Lock()
	c.items[url] = img
	c.mu.Unlock()
	return img
}

func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *ImageCache) download(ctx context.Context, url string) (image.Image, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline := time.Now().Add(constants.ImageTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, crerr.Wrap(err, "request failed")
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, crerr.Newf("unexpected status %d", resp.StatusCode())
	}

	img, _, err := image.Decode(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, crerr.Wrap(err, "failed to decode image")
	}
	return img, nil
}
