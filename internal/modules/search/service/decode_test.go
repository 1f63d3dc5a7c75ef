package service

import (
	"encoding/json"
	"testing"

	"github.com/meilisearch/meilisearch-go"
)

func TestStringFieldDecodesRawHits(t *testing.T) {
	hit := meilisearch.Hit{
		"id":    json.RawMessage(`"0195f1a2-abc"`),
		"title": json.RawMessage(`"Priprema za kolokvij"`),
		"count": json.RawMessage(`7`),
	}

	if got := stringField(hit, "title"); got != "Priprema za kolokvij" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := stringField(hit, "id"); got != "0195f1a2-abc" {
		t.Fatalf("unexpected id %q", got)
	}
	if got := stringField(hit, "missing"); got != "" {
		t.Fatalf("missing key should decode to empty, got %q", got)
	}
	if got := stringField(hit, "count"); got != "" {
		t.Fatalf("non-string field should decode to empty, got %q", got)
	}
}
