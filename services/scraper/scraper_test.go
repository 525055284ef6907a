package scraper

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"tokyokino/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type fakeScraper struct {
	name string
	rows []models.ShowingRecord
	err  error
	boom bool
}

func (f *fakeScraper) Name() string { return f.name }

func (f *fakeScraper) Fetch(ctx context.Context) ([]models.ShowingRecord, error) {
	if f.boom {
		panic("parser walked off the page")
	}
	return f.rows, f.err
}

func TestRunAllIsolatesFailures(t *testing.T) {
	ok1 := &fakeScraper{name: "A", rows: []models.ShowingRecord{{Cinema: "A", Date: "2026-09-01", Title: "x"}}}
	failing := &fakeScraper{name: "B", err: errors.New("site is down")}
	panicking := &fakeScraper{name: "C", boom: true}
	ok2 := &fakeScraper{name: "D", rows: []models.ShowingRecord{{Cinema: "D", Date: "2026-09-01", Title: "y"}}}

	rows := RunAll(context.Background(), []Scraper{ok1, failing, panicking, ok2})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows from the healthy scrapers, got %d", len(rows))
	}
	if rows[0].Cinema != "A" || rows[1].Cinema != "D" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestRunAllCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &fakeScraper{name: "A"}
	if rows := RunAll(ctx, []Scraper{s}); len(rows) != 0 {
		t.Fatalf("expected no rows with a canceled context, got %d", len(rows))
	}
}

func testClient(rt roundTripFunc) *http.Client {
	return &http.Client{Transport: rt}
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestFetchBodyRetriesServerErrors(t *testing.T) {
	calls := 0
	httpc := testClient(func(req *http.Request) (*http.Response, error) {
		calls++
		if ua := req.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
			t.Errorf("expected browser user agent, got %q", ua)
		}
		if calls < 3 {
			return textResponse(502, "bad gateway"), nil
		}
		return textResponse(200, "payload"), nil
	})
	body, err := fetchBody(context.Background(), httpc, "https://example.org/schedule", "")
	if err != nil {
		t.Fatalf("fetchBody: %v", err)
	}
	if string(body) != "payload" {
		t.Fatalf("body = %q", body)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestFetchBodyClientErrorNotRetried(t *testing.T) {
	calls := 0
	httpc := testClient(func(req *http.Request) (*http.Response, error) {
		calls++
		return textResponse(404, "gone"), nil
	})
	if _, err := fetchBody(context.Background(), httpc, "https://example.org/gone", ""); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", calls)
	}
}

func TestFetchBodySendsReferer(t *testing.T) {
	httpc := testClient(func(req *http.Request) (*http.Response, error) {
		if got := req.Header.Get("Referer"); got != "https://example.org/" {
			t.Errorf("referer = %q", got)
		}
		return textResponse(200, "ok"), nil
	})
	if _, err := fetchBody(context.Background(), httpc, "https://example.org/data.js", "https://example.org/"); err != nil {
		t.Fatalf("fetchBody: %v", err)
	}
}
