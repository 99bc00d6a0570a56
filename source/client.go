// Package source retrieves the road graph and the live flow feed.
//
// Every fetch accepts either an http(s) URL or a local file path, so saved
// documents can be replayed offline.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theoremus-urban-solutions/utmc-sensors/flow"
	"github.com/theoremus-urban-solutions/utmc-sensors/osmgraph"
)

// BBox is a query box as minLon, minLat, maxLon, maxLat.
type BBox [4]float64

// NewBBox converts a configured bounding box.
func NewBBox(v []float64) (BBox, error) {
	var b BBox
	if len(v) != len(b) {
		return b, fmt.Errorf("bbox needs 4 values, got %d", len(v))
	}
	copy(b[:], v)
	return b, nil
}

// String renders the box the way XAPI expects it.
func (b BBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b[0], b[1], b[2], b[3])
}

// Client fetches documents over HTTP or from disk.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client querying the XAPI endpoint at baseURL.
// A zero timeout means no timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "?"),
	}
}

// SensorWaysURL is the XAPI query for every way carrying sensor_ref:lanes.
func (c *Client) SensorWaysURL(b BBox) string {
	return fmt.Sprintf("%s?way[bbox=%s][%s=*]", c.baseURL, b, osmgraph.TagSensorRefLanes)
}

// SensorNodesURL is the XAPI query for every traffic monitoring node.
func (c *Client) SensorNodesURL(b BBox) string {
	return fmt.Sprintf("%s?node[bbox=%s][monitoring=traffic]", c.baseURL, b)
}

// Fetch returns the document at urlOrPath.
func (c *Client) Fetch(ctx context.Context, urlOrPath string) ([]byte, error) {
	body, err := c.open(ctx, urlOrPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", urlOrPath, err)
	}
	return data, nil
}

func (c *Client) open(ctx context.Context, urlOrPath string) (io.ReadCloser, error) {
	if urlOrPath == "" {
		return nil, fmt.Errorf("empty source location")
	}
	if !strings.HasPrefix(urlOrPath, "http://") && !strings.HasPrefix(urlOrPath, "https://") {
		f, err := os.Open(urlOrPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", urlOrPath, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlOrPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", urlOrPath, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", urlOrPath, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, urlOrPath)
	}
	return resp.Body, nil
}

// FetchSensorWays downloads and parses the ways carrying sensor references
// together with the nodes they reference.
func (c *Client) FetchSensorWays(ctx context.Context, b BBox) (*osmgraph.Graph, error) {
	return c.fetchGraph(ctx, c.SensorWaysURL(b))
}

// FetchSensorNodes downloads and parses the tagged sensor nodes.
func (c *Client) FetchSensorNodes(ctx context.Context, b BBox) (*osmgraph.Graph, error) {
	return c.fetchGraph(ctx, c.SensorNodesURL(b))
}

func (c *Client) fetchGraph(ctx context.Context, u string) (*osmgraph.Graph, error) {
	data, err := c.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	g, err := osmgraph.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", u, err)
	}
	return g, nil
}

// FetchFlow downloads and parses the flow feed at urlOrPath.
func (c *Client) FetchFlow(ctx context.Context, urlOrPath string, p *flow.Parser) (*flow.Feed, error) {
	body, err := c.open(ctx, urlOrPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	feed, err := p.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", urlOrPath, err)
	}
	return feed, nil
}

// Graph holds both road graph queries for one bounding box.
type Graph struct {
	Ways    *osmgraph.Graph
	Sensors *osmgraph.Graph
}

// FetchGraph retrieves the sensor ways and sensor nodes concurrently. The
// first failure cancels the other request.
func (c *Client) FetchGraph(ctx context.Context, b BBox) (*Graph, error) {
	g, ctx := errgroup.WithContext(ctx)
	var out Graph
	g.Go(func() error {
		ways, err := c.FetchSensorWays(ctx, b)
		if err != nil {
			return fmt.Errorf("sensor ways: %w", err)
		}
		out.Ways = ways
		return nil
	})
	g.Go(func() error {
		nodes, err := c.FetchSensorNodes(ctx, b)
		if err != nil {
			return fmt.Errorf("sensor nodes: %w", err)
		}
		out.Sensors = nodes
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
