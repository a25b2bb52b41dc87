package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Image is the outcome of a thumbnail request. It is returned alongside errors for
// non-200 responses so callers can report what the server sent.
type Image struct {
	URL         string
	StatusCode  int
	ContentType string
	Data        []byte
}

func (i *Image) String() string {
	if i == nil {
		return "<no response>"
	}
	return fmt.Sprintf("GET %s -> %d (%s, %d bytes)", i.URL, i.StatusCode, i.ContentType, len(i.Data))
}

// ImageClient downloads card thumbnails from a URL template.
// The template placeholders are {id} (full Scryfall id), {id0} and {id1} (its first two characters).
type ImageClient struct {
	client      *http.Client
	urlTemplate string
	userAgent   string
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewImageClient creates an image client. perSecond <= 0 disables rate limiting.
func NewImageClient(client *http.Client, urlTemplate, userAgent string, perSecond float64, logger *zap.Logger) *ImageClient {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &ImageClient{
		client:      client,
		urlTemplate: urlTemplate,
		userAgent:   userAgent,
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger,
	}
}

// ImageURL builds the thumbnail URL for a Scryfall id
func ImageURL(urlTemplate, scryfallID string) (string, error) {
	if len(scryfallID) < 2 {
		return "", fmt.Errorf("scryfall id %q is too short to build an image path", scryfallID)
	}
	return strings.NewReplacer(
		"{id0}", scryfallID[0:1],
		"{id1}", scryfallID[1:2],
		"{id}", scryfallID,
	).Replace(urlTemplate), nil
}

// Fetch downloads the thumbnail for a Scryfall id
func (c *ImageClient) Fetch(ctx context.Context, scryfallID string) (*Image, error) {
	url, err := ImageURL(c.urlTemplate, scryfallID)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	img := &Image{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	img.Data, err = io.ReadAll(resp.Body)
	if err != nil {
		return img, fmt.Errorf("failed to read image: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return img, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	c.logger.Debug("Downloaded image", zap.String("url", url), zap.Int("bytes", len(img.Data)))

	return img, nil
}
