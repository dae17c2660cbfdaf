package rates

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

const feedDoc = `<?xml version="1.0" encoding="utf-8"?>
<Rates>
	<Rate date="2025-04-01" product="credit_card">20.9</Rate>
	<Rate date="2025-05-01" product="personal_loan">11.2</Rate>
	<Rate date="2025-05-01" product="credit_card">21.4</Rate>
</Rates>`

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	c, err := NewClient(url, time.Minute, log)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestParseXMLResponse(t *testing.T) {
	c := newTestClient(t, "")
	rate, err := c.parseXMLResponse([]byte(feedDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rate != 21.4 {
		t.Errorf("expected latest credit_card rate 21.4, got %f", rate)
	}
}

func TestParseXMLResponseMissingProduct(t *testing.T) {
	c := newTestClient(t, "")
	_, err := c.parseXMLResponse([]byte(`<Rates><Rate product="mortgage">6.1</Rate></Rates>`))
	if err == nil {
		t.Fatal("expected error when the credit_card product is absent")
	}
}

func TestBenchmarkAPRCaches(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(feedDoc))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	rate, err := c.BenchmarkAPR()
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rate != 21.4 {
		t.Errorf("expected 21.4, got %f", rate)
	}
	c.cache.Wait()

	if _, err := c.BenchmarkAPR(); err != nil {
		t.Fatalf("cached fetch: %v", err)
	}
	if hits != 1 {
		t.Errorf("expected a single upstream hit, got %d", hits)
	}
}

func TestBenchmarkAPRNoURL(t *testing.T) {
	c := newTestClient(t, "")
	if _, err := c.BenchmarkAPR(); err == nil {
		t.Fatal("expected error when feed url is not configured")
	}
}
