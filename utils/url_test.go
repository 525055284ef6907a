package utils

import (
	"strings"
	"testing"
)

func TestEncodeURLWithSpaces(t *testing.T) {
	result, err := EncodeURLWithSpaces("https://eiga.com/search/title with spaces")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result, "title%20with%20spaces") {
		t.Errorf("expected encoded spaces in path, got %q", result)
	}
}

func TestEncodeURLWithSpacesJapanesePath(t *testing.T) {
	result, err := EncodeURLWithSpaces("https://eiga.com/search/羅生門")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "https://eiga.com/search/%E7%BE%85%E7%94%9F%E9%96%80" {
		t.Errorf("expected percent-encoded path, got %q", result)
	}
}

func TestEncodeURLWithSpacesQuery(t *testing.T) {
	result, err := EncodeURLWithSpaces("https://example.org/find?q=two words")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(result, "?q=two%20words") {
		t.Errorf("expected encoded query, got %q", result)
	}
}
