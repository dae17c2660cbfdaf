// Package rates fetches benchmark consumer credit rates from a published
// XML feed. Results are cached so the feed is hit at most once per TTL.
package rates

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/dgraph-io/ristretto"
	"github.com/sirupsen/logrus"
)

const cacheKey = "benchmark_apr"

// Client handles integration with the benchmark rates feed
type Client struct {
	url    string
	client *http.Client
	cache  *ristretto.Cache
	ttl    time.Duration
	log    *logrus.Logger
}

// NewClient initializes a new rates client
func NewClient(url string, ttl time.Duration, log *logrus.Logger) (*Client, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 64,
		MaxCost:     16,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create rates cache: %w", err)
	}
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: cache,
		ttl:   ttl,
		log:   log,
	}, nil
}

// BenchmarkAPR returns the current benchmark credit-card APR in percent.
// The cached value is served until it expires.
func (c *Client) BenchmarkAPR() (float64, error) {
	if v, ok := c.cache.Get(cacheKey); ok {
		return v.(float64), nil
	}

	body, err := c.fetch()
	if err != nil {
		return 0, err
	}

	rate, err := c.parseXMLResponse(body)
	if err != nil {
		return 0, err
	}

	c.cache.SetWithTTL(cacheKey, rate, 1, c.ttl)
	c.log.Debugf("Benchmark APR refreshed: %.2f", rate)
	return rate, nil
}

func (c *Client) fetch() ([]byte, error) {
	if c.url == "" {
		return nil, fmt.Errorf("rates feed url not configured")
	}

	resp, err := c.client.Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}
	return body, nil
}

// parseXMLResponse extracts the most recent credit-card APR from the feed.
// Expected shape: <Rates><Rate date="..." product="credit_card">21.4</Rate>...</Rates>
func (c *Client) parseXMLResponse(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %v", err)
	}

	elements := doc.FindElements("//Rate[@product='credit_card']")
	if len(elements) == 0 {
		return 0, fmt.Errorf("no credit_card rate in feed")
	}

	// The feed lists rates chronologically; take the last one.
	last := elements[len(elements)-1]
	rate, err := strconv.ParseFloat(last.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate value %q: %v", last.Text(), err)
	}
	return rate, nil
}
