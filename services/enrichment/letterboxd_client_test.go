package enrichment

import (
	"context"
	"net/http"
	"testing"
)

func newTestLetterboxdClient(rt roundTripFunc) *letterboxdClient {
	c := newLetterboxdClient(&http.Client{Transport: rt})
	c.delay = 0
	return c
}

func TestLetterboxdLink(t *testing.T) {
	if got := letterboxdLink(346); got != "https://letterboxd.com/tmdb/346" {
		t.Fatalf("letterboxdLink(346) = %q", got)
	}
}

func TestLetterboxdEnglishTitle(t *testing.T) {
	page := `<html><head>
		<meta property="og:title" content="Rashomon (1950)" />
		<title>Rashomon - Letterboxd</title>
	</head><body></body></html>`
	c := newTestLetterboxdClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.String() != "https://letterboxd.com/tmdb/346" {
			t.Fatalf("unexpected URL %s", req.URL)
		}
		if ua := req.Header.Get("User-Agent"); ua == "" || ua == "Go-http-client/1.1" {
			t.Errorf("expected a browser user agent, got %q", ua)
		}
		return jsonResponse(200, page), nil
	})

	title, err := c.englishTitle(context.Background(), 346)
	if err != nil {
		t.Fatalf("englishTitle: %v", err)
	}
	if title != "Rashomon" {
		t.Fatalf("expected year tail stripped, got %q", title)
	}
}

func TestLetterboxdEnglishTitleMissingTag(t *testing.T) {
	c := newTestLetterboxdClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `<html><head></head><body></body></html>`), nil
	})
	title, err := c.englishTitle(context.Background(), 42)
	if err != nil {
		t.Fatalf("englishTitle: %v", err)
	}
	if title != "" {
		t.Fatalf("expected empty title, got %q", title)
	}
}

func TestLetterboxdEnglishTitleNotFound(t *testing.T) {
	c := newTestLetterboxdClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(404, "not found"), nil
	})
	if _, err := c.englishTitle(context.Background(), 42); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
