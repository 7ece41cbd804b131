package radar

import (
	"encoding/json"
	"testing"
)

func TestParseDirectObject(t *testing.T) {
	doc, err := JSONParser{}.Parse(json.RawMessage(`{"power": 70}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc["power"] != 70.0 {
		t.Fatalf("expected power 70, got %v", doc["power"])
	}
}

func TestParseObjectInsideFragments(t *testing.T) {
	raw := json.RawMessage(`[{"text": {"value": "Here is the analysis:\n{\"power\": 65, \"risk\": 30}\nDone."}}]`)

	doc, err := JSONParser{}.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc["power"] != 65.0 || doc["risk"] != 30.0 {
		t.Fatalf("expected embedded object extracted, got %v", doc)
	}
}

func TestParseObjectInsideMarkdownFence(t *testing.T) {
	quoted, _ := json.Marshal("```json\n{\"gravity\": 55}\n```")

	doc, err := JSONParser{}.Parse(quoted)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc["gravity"] != 55.0 {
		t.Fatalf("expected fenced object extracted, got %v", doc)
	}
}

func TestParseNoObjectFails(t *testing.T) {
	quoted, _ := json.Marshal("no structure here at all")
	if _, err := (JSONParser{}).Parse(quoted); err == nil {
		t.Fatalf("expected error for object-free text")
	}
}

func TestParseEmptyFails(t *testing.T) {
	if _, err := (JSONParser{}).Parse(nil); err == nil {
		t.Fatalf("expected error for empty response")
	}
}
