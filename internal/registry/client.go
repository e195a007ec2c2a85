// Package registry queries the ArcGIS parcel registries for lot geometries.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/woozymasta/lotexport/internal/config"
	"github.com/woozymasta/lotexport/internal/geo"
	"github.com/woozymasta/lotexport/internal/parcel"

	"github.com/rs/zerolog/log"
)

// ErrUpstream marks failures reported by a registry.
var ErrUpstream = errors.New("registry upstream error")

// maxErrorBody caps how much of a failed response is kept for the error.
const maxErrorBody = 512

// Source resolves a lot identifier to registry features.
type Source interface {
	Lookup(ctx context.Context, id parcel.Identifier) ([]geo.Feature, error)
}

// Client queries one ArcGIS layer per region.
type Client struct {
	HTTPClient *http.Client
	Sources    config.Sources
}

// NewClient creates a registry client for the configured sources.
func NewClient(sources config.Sources) *Client {
	return &Client{
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Sources: sources,
	}
}

// queryResponse is the GeoJSON flavoured ArcGIS query reply.
type queryResponse struct {
	Features []geo.Feature `json:"features"`
	Error    *struct {
		Code    int      `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

// Lookup implements Source.
func (c *Client) Lookup(ctx context.Context, id parcel.Identifier) ([]geo.Feature, error) {
	src, err := c.source(id.Region)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("parse %s source url: %w", id.Region, err)
	}
	u.RawQuery = QueryParams(id, src.OutFields).Encode()

	if src.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, src.Timeout)
		defer cancel()
	}

	log.Debug().
		Str("region", id.Region.String()).
		Str("identifier", id.String()).
		Str("url", u.String()).
		Msg("Querying parcel registry")

	start := time.Now()
	features, err := c.fetch(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", id, err)
	}

	log.Debug().
		Str("identifier", id.String()).
		Int("features", len(features)).
		Dur("duration", time.Since(start)).
		Msg("Parcel registry answered")

	return features, nil
}

func (c *Client) source(region parcel.Region) (config.Source, error) {
	switch region {
	case parcel.NSW:
		return c.Sources.NSW, nil
	case parcel.QLD:
		return c.Sources.QLD, nil
	default:
		return config.Source{}, fmt.Errorf("no registry for region %q", region)
	}
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]geo.Feature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if qr.Error != nil {
		return nil, fmt.Errorf("%w: %d %s", ErrUpstream, qr.Error.Code, qr.Error.Message)
	}

	if qr.Features == nil {
		qr.Features = []geo.Feature{}
	}

	return qr.Features, nil
}
