package radar

import (
	"encoding/json"
	"reflect"
	"testing"
	"unicode/utf8"
)

func TestNormalizeCanonicalKeysWin(t *testing.T) {
	raw := json.RawMessage(`{
		"power": 71,
		"power_score": 10,
		"gravity_score": 55,
		"riskScore": 30,
		"tl_dr": "short version",
		"summary": "should lose to tl_dr",
		"sources_confirmed": true
	}`)

	got := Normalize(raw, nil)

	if got.PowerScore == nil || *got.PowerScore != 71 {
		t.Fatalf("expected power 71, got %v", got.PowerScore)
	}
	if got.GravityScore == nil || *got.GravityScore != 55 {
		t.Fatalf("expected gravity 55, got %v", got.GravityScore)
	}
	if got.RiskScore == nil || *got.RiskScore != 30 {
		t.Fatalf("expected risk 30, got %v", got.RiskScore)
	}
	if got.TLDR == nil || *got.TLDR != "short version" {
		t.Fatalf("expected tl_dr alias to win, got %v", got.TLDR)
	}
	if !got.SourcesConfirmed {
		t.Fatalf("expected sources_confirmed alias to map")
	}
}

func TestNormalizeAbsentFieldsStayNil(t *testing.T) {
	got := Normalize(json.RawMessage(`{"power": 50}`), nil)

	if got.GravityScore != nil || got.RiskScore != nil {
		t.Fatalf("expected absent scores to stay nil")
	}
	if got.TLDR != nil || got.Diagnosis != nil || got.Strategy != nil {
		t.Fatalf("expected absent text fields to stay nil")
	}
	if got.HasCoreScores() {
		t.Fatalf("one score must not satisfy core scores")
	}
}

func TestNormalizeScoreCoercion(t *testing.T) {
	got := Normalize(json.RawMessage(`{"power": "62.5", "gravity": 40, "risk": "not a number"}`), nil)

	if got.PowerScore == nil || *got.PowerScore != 62.5 {
		t.Fatalf("expected numeric string to coerce, got %v", got.PowerScore)
	}
	if got.RiskScore != nil {
		t.Fatalf("expected unparseable score to stay nil, got %v", *got.RiskScore)
	}
}

func TestNormalizeRiskFlagsCapped(t *testing.T) {
	got := Normalize(json.RawMessage(`{"risk_flags": ["a", "b", "c", "d", "e"]}`), nil)

	if len(got.RiskFlags) != 3 {
		t.Fatalf("expected 3 flags, got %d", len(got.RiskFlags))
	}
	if !reflect.DeepEqual(got.RiskFlags, []string{"a", "b", "c"}) {
		t.Fatalf("expected first three flags in order, got %v", got.RiskFlags)
	}
}

func TestNormalizeRadarAxes(t *testing.T) {
	got := Normalize(json.RawMessage(`{"radar": {"authority": 80, "empathy": 20, "bogus": 99}}`), nil)

	if got.Radar.Authority == nil || *got.Radar.Authority != 80 {
		t.Fatalf("expected authority 80, got %v", got.Radar.Authority)
	}
	if got.Radar.Empathy == nil || *got.Radar.Empathy != 20 {
		t.Fatalf("expected empathy 20, got %v", got.Radar.Empathy)
	}
	if got.Radar.Manipulation != nil || got.Radar.Volatility != nil || got.Radar.Resilience != nil {
		t.Fatalf("expected missing axes to stay nil")
	}
}

func TestNormalizeActionItems(t *testing.T) {
	raw := json.RawMessage(`{"action_items": [
		{"section": "immediate_move", "text": "do the thing"},
		{"category": "strategic", "item": "plan it"},
		{"section": "unknown_section", "text": "dropped"},
		{"section": "long_term_fix", "text": ""},
		"not an object"
	]}`)

	got := Normalize(raw, nil)

	want := []ActionItem{
		{Section: SectionImmediateMove, Text: "do the thing"},
		{Section: SectionStrategicTool, Text: "plan it"},
	}
	if !reflect.DeepEqual(got.ActionItems, want) {
		t.Fatalf("unexpected action items: %v", got.ActionItems)
	}
}

func TestNormalizeActionItemsNonArrayDropped(t *testing.T) {
	got := Normalize(json.RawMessage(`{"actionItems": {"section": "immediate_move", "text": "x"}}`), nil)

	if got.ActionItems != nil {
		t.Fatalf("expected non-array action items to be dropped, got %v", got.ActionItems)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := json.RawMessage(`{
		"power": 70, "gravity": 60, "risk": 50,
		"tldr": "t", "riskFlags": ["f1"],
		"radar": {"authority": 10},
		"actionItems": [{"section": "analytical_check", "text": "check"}]
	}`)

	first := Normalize(raw, nil)
	encoded, err := json.Marshal(first.Flatten())
	if err != nil {
		t.Fatalf("marshal flatten: %v", err)
	}
	second := Normalize(encoded, nil)

	if !reflect.DeepEqual(first.Flatten(), second.Flatten()) {
		t.Fatalf("normalization not idempotent:\nfirst:  %v\nsecond: %v", first.Flatten(), second.Flatten())
	}
}

func TestNormalizeFallbackOnUnparseable(t *testing.T) {
	got := Normalize(json.RawMessage("plain prose, definitely not json"), nil)

	if got.TLDR == nil || *got.TLDR == "" {
		t.Fatalf("expected fallback tldr to carry raw text")
	}
	if got.Diagnosis == nil || *got.Diagnosis == "" {
		t.Fatalf("expected fallback diagnosis to carry raw text")
	}
	if !got.SourcesConfirmed {
		t.Fatalf("expected fallback to mark sources confirmed")
	}
	if got.HasCoreScores() {
		t.Fatalf("fallback result must not claim core scores")
	}
}

func TestNormalizeFallbackTruncates(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'x'
	}
	got := Normalize(long, nil)

	if got.TLDR == nil || len(*got.TLDR) != maxTLDRLen {
		t.Fatalf("expected tldr truncated to %d, got %d", maxTLDRLen, len(*got.TLDR))
	}
	if got.Diagnosis == nil || len(*got.Diagnosis) != maxNarrativeLen {
		t.Fatalf("expected diagnosis truncated to %d, got %d", maxNarrativeLen, len(*got.Diagnosis))
	}
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	// "é" is two bytes; a byte cut at 3 would land mid-rune.
	got := truncate("aéé", 3)
	if got != "aé" {
		t.Fatalf("expected cut before the split rune, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("expected valid utf-8, got %q", got)
	}
	if got := truncate("abc", 3); got != "abc" {
		t.Fatalf("expected text within the limit untouched, got %q", got)
	}
}

func TestRenderTextFragments(t *testing.T) {
	raw := json.RawMessage(`[
		{"text": {"value": "first"}},
		{"text": {"value": "second"}},
		"third"
	]`)

	if got := RenderText(raw); got != "first\nsecond\nthird" {
		t.Fatalf("unexpected rendering: %q", got)
	}
}
