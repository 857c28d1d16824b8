package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/guttosm/b3penny/internal/domain/models"
)

const quoteSummaryJSON = `{
  "quoteSummary": {
    "result": [{
      "price": {
        "regularMarketPrice": {"raw": 3.29, "fmt": "3.29"},
        "regularMarketPreviousClose": {"raw": 3.33},
        "regularMarketVolume": {"raw": 2162600},
        "shortName": "HELBOR      ON  NM",
        "longName": "Helbor Empreendimentos S.A."
      },
      "summaryDetail": {
        "previousClose": {"raw": 3.33},
        "trailingPE": {},
        "dividendYield": {"raw": 0.045},
        "volume": {"raw": 2162600}
      },
      "defaultKeyStatistics": {
        "trailingEps": {"raw": 0.31},
        "forwardEps": {},
        "bookValue": {"raw": 20.1}
      },
      "financialData": {"currentPrice": {"raw": 3.29}},
      "assetProfile": {"sector": "Real Estate"}
    }],
    "error": null
  }
}`

const chartJSON = `{
  "chart": {
    "result": [{
      "timestamp": [1, 2, 3, 4],
      "indicators": {
        "quote": [{"close": [10, 11, null, 12]}],
        "adjclose": [{"adjclose": [9.5, null, 10.5, 11.5]}]
      }
    }],
    "error": null
  }
}`

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithCrumb(false, ""), WithRateLimit(0))
}

func TestClient_Quote(t *testing.T) {
	var gotPath, gotModules, gotUA string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotModules = r.URL.Query().Get("modules")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(quoteSummaryJSON))
	}))

	q, err := c.Quote(context.Background(), "HBOR3")
	if err != nil {
		t.Fatalf("Quote error: %v", err)
	}
	if gotPath != "/v10/finance/quoteSummary/HBOR3.SA" {
		t.Fatalf("path=%q", gotPath)
	}
	if !strings.Contains(gotModules, "defaultKeyStatistics") {
		t.Fatalf("modules=%q", gotModules)
	}
	if gotUA == "" {
		t.Fatalf("expected User-Agent header")
	}

	if p, ok := q.ResolvePrice(); !ok || p != 3.29 {
		t.Fatalf("price=%v ok=%v", p, ok)
	}
	if eps, ok := q.ResolveEPS(); !ok || eps != 0.31 {
		t.Fatalf("eps=%v ok=%v", eps, ok)
	}
	if q.TrailingPE != nil {
		t.Fatalf("empty {} must decode as absent, got %v", *q.TrailingPE)
	}
	if q.BookValue == nil || *q.BookValue != 20.1 {
		t.Fatalf("bookValue=%v", q.BookValue)
	}
	if v, ok := q.ResolveVolume(); !ok || v != 2162600 {
		t.Fatalf("volume=%v ok=%v", v, ok)
	}
	if q.ResolveName("HBOR3") != "HELBOR      ON  NM" {
		t.Fatalf("name=%q", q.ResolveName("HBOR3"))
	}
	if q.Sector != "Real Estate" {
		t.Fatalf("sector=%q", q.Sector)
	}
}

func TestClient_Quote_ErrorEnvelope(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"No fundamentals data found"}}}`))
	}))

	_, err := c.Quote(context.Background(), "XXXX3")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T %v", err, err)
	}
	if !strings.Contains(apiErr.Message, "Not Found") {
		t.Fatalf("message=%q", apiErr.Message)
	}
}

func TestClient_Quote_HTTPStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))

	_, err := c.Quote(context.Background(), "PETR4")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 APIError, got %v", err)
	}
}

func TestClient_Closes_PrefersAdjustedAndSkipsGaps(t *testing.T) {
	var gotRange string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/OIBR3.SA" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotRange = r.URL.Query().Get("range")
		_, _ = w.Write([]byte(chartJSON))
	}))

	closes, err := c.Closes(context.Background(), "OIBR3", models.Period5Years)
	if err != nil {
		t.Fatalf("Closes error: %v", err)
	}
	if gotRange != "5y" {
		t.Fatalf("range=%q", gotRange)
	}
	want := []float64{9.5, 10.5, 11.5}
	if len(closes) != len(want) {
		t.Fatalf("closes=%v want %v", closes, want)
	}
	for i := range want {
		if closes[i] != want[i] {
			t.Fatalf("closes=%v want %v", closes, want)
		}
	}
}

func TestClient_CrumbHandshake(t *testing.T) {
	var crumbCalls, cookieCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/cookie", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cookieCalls, 1)
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&crumbCalls, 1)
		if _, err := r.Cookie("A3"); err != nil {
			http.Error(w, "no cookie", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("abc123"))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("crumb") != "abc123" {
			http.Error(w, "Invalid Crumb", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(quoteSummaryJSON))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithCrumb(true, srv.URL+"/cookie"), WithRateLimit(0))
	for i := 0; i < 3; i++ {
		if _, err := c.Quote(context.Background(), "PETR4"); err != nil {
			t.Fatalf("Quote #%d error: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&crumbCalls); got != 1 {
		t.Fatalf("crumb should be cached, fetched %d times", got)
	}
	if got := atomic.LoadInt32(&cookieCalls); got != 1 {
		t.Fatalf("cookie endpoint hit %d times", got)
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartJSON))
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Closes(ctx, "PETR4", models.Period5Days); err == nil {
		t.Fatalf("expected error on canceled context")
	}
}

func TestRawValue_BareNumber(t *testing.T) {
	var r rawValue
	if err := r.UnmarshalJSON([]byte("1.5")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f := r.asFloat(); f == nil || *f != 1.5 {
		t.Fatalf("got %v", f)
	}
	if err := r.UnmarshalJSON([]byte("null")); err != nil || r.asFloat() != nil {
		t.Fatalf("null should be absent")
	}
}
