package radar

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"radar-backend/internal/llm"
	"radar-backend/internal/shared/telemetry"
)

const (
	maxRiskFlags    = 3
	maxTLDRLen      = 600
	maxNarrativeLen = 2000
)

// aliases maps each canonical field to the ordered list of source keys
// it may be populated from. First present alias wins; adding a new alias
// is a data change.
var aliases = map[string][]string{
	"power":            {"power", "power_score", "powerScore"},
	"gravity":          {"gravity", "gravity_score", "gravityScore"},
	"risk":             {"risk", "risk_score", "riskScore"},
	"confidence":       {"confidence", "confidenceLevel", "issue_confidence_pct"},
	"tldr":             {"tldr", "tl_dr", "summary"},
	"diagnosis":        {"diagnosis", "diagnoses", "issue_diagnosis"},
	"strategy":         {"strategy", "strategic_recommendation", "strategicRecommendation", "recommendation"},
	"riskFlags":        {"riskFlags", "risk_flags", "flags"},
	"radar":            {"radar"},
	"profile":          {"profile", "psychologicalProfile", "psychological_profile"},
	"actionItems":      {"actionItems", "action_items"},
	"sourcesConfirmed": {"sourcesConfirmed", "sources_confirmed"},
}

var axisNames = []string{"authority", "manipulation", "empathy", "volatility", "resilience"}

// Normalize maps an arbitrarily-shaped raw response onto the canonical
// Result. A non-nil Result is always returned: if structured parsing
// fails, normalization degrades to a raw-text rendering instead of
// propagating the error.
func Normalize(raw json.RawMessage, parser llm.Parser) Result {
	if parser == nil {
		parser = JSONParser{}
	}
	doc, err := parser.Parse(raw)
	if err != nil {
		telemetry.Warn("radar.normalize.fallback", map[string]any{"error": err.Error()})
		return fallbackFromRaw(raw)
	}
	return FromDocument(doc)
}

// FromDocument extracts the canonical fields from a parsed document via
// the alias table. Pure; absent fields stay nil.
func FromDocument(doc map[string]any) Result {
	out := Result{
		PowerScore:   lookupScore(doc, "power"),
		GravityScore: lookupScore(doc, "gravity"),
		RiskScore:    lookupScore(doc, "risk"),
		Confidence:   lookupScore(doc, "confidence"),
		TLDR:         lookupText(doc, "tldr"),
		Diagnosis:    lookupText(doc, "diagnosis"),
		Strategy:     lookupText(doc, "strategy"),
		RiskFlags:    lookupFlags(doc),
		Radar:        lookupAxes(doc),
		Profile:      lookupProfile(doc),
		ActionItems:  lookupActionItems(doc),
	}
	if confirmed, ok := lookup(doc, "sourcesConfirmed"); ok {
		if b, ok := confirmed.(bool); ok {
			out.SourcesConfirmed = b
		}
	}
	return out
}

func lookup(doc map[string]any, canonical string) (any, bool) {
	for _, key := range aliases[canonical] {
		if value, ok := doc[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

func lookupScore(doc map[string]any, canonical string) *float64 {
	value, ok := lookup(doc, canonical)
	if !ok {
		return nil
	}
	return asFloat(value)
}

func lookupText(doc map[string]any, canonical string) *string {
	value, ok := lookup(doc, canonical)
	if !ok {
		return nil
	}
	str, ok := value.(string)
	if !ok || strings.TrimSpace(str) == "" {
		return nil
	}
	return &str
}

func lookupFlags(doc map[string]any) []string {
	value, ok := lookup(doc, "riskFlags")
	if !ok {
		return nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, maxRiskFlags)
	for _, item := range list {
		str, ok := item.(string)
		if !ok || strings.TrimSpace(str) == "" {
			continue
		}
		out = append(out, str)
		if len(out) == maxRiskFlags {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func lookupAxes(doc map[string]any) Axes {
	value, ok := lookup(doc, "radar")
	if !ok {
		return Axes{}
	}
	sub, ok := value.(map[string]any)
	if !ok {
		return Axes{}
	}
	scores := make(map[string]*float64, len(axisNames))
	for _, name := range axisNames {
		if raw, ok := sub[name]; ok && raw != nil {
			scores[name] = asFloat(raw)
		}
	}
	return Axes{
		Authority:    scores["authority"],
		Manipulation: scores["manipulation"],
		Empathy:      scores["empathy"],
		Volatility:   scores["volatility"],
		Resilience:   scores["resilience"],
	}
}

func lookupProfile(doc map[string]any) map[string]any {
	value, ok := lookup(doc, "profile")
	if !ok {
		return nil
	}
	profile, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return profile
}

// lookupActionItems requires an array; any other shape is dropped whole.
func lookupActionItems(doc map[string]any) []ActionItem {
	value, ok := lookup(doc, "actionItems")
	if !ok {
		return nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]ActionItem, 0, len(list))
	for _, raw := range list {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		section := normalizeSection(firstString(entry, "section", "category"))
		text := firstString(entry, "text", "item")
		if section == "" || strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, ActionItem{Section: section, Text: text})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeSection(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "immediate_move", "immediatemove", "immediate":
		return SectionImmediateMove
	case "strategic_tool", "strategictool", "strategic":
		return SectionStrategicTool
	case "analytical_check", "analyticalcheck", "analytical":
		return SectionAnalyticalCheck
	case "long_term_fix", "longtermfix", "long_term":
		return SectionLongTermFix
	default:
		return ""
	}
}

func firstString(entry map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := entry[key]; ok {
			if str, ok := value.(string); ok {
				return str
			}
		}
	}
	return ""
}

func asFloat(value any) *float64 {
	switch v := value.(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return &f
		}
		return nil
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

// fallbackFromRaw renders the raw payload as plain text so the pipeline
// still produces a displayable result.
func fallbackFromRaw(raw json.RawMessage) Result {
	text := RenderText(raw)
	tldr := truncate(text, maxTLDRLen)
	diagnosis := truncate(text, maxNarrativeLen)
	return Result{
		TLDR:             &tldr,
		Diagnosis:        &diagnosis,
		SourcesConfirmed: true,
	}
}

// RenderText joins an array of content fragments using their .text.value
// sub-field when present, else stringifies each fragment. Non-array
// payloads render as their string form.
func RenderText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var fragments []any
	if err := json.Unmarshal(raw, &fragments); err != nil {
		return string(raw)
	}
	parts := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		parts = append(parts, fragmentText(fragment))
	}
	return strings.Join(parts, "\n")
}

func fragmentText(fragment any) string {
	if entry, ok := fragment.(map[string]any); ok {
		if text, ok := entry["text"].(map[string]any); ok {
			if value, ok := text["value"].(string); ok {
				return value
			}
		}
	}
	if str, ok := fragment.(string); ok {
		return str
	}
	data, err := json.Marshal(fragment)
	if err != nil {
		return fmt.Sprintf("%v", fragment)
	}
	return string(data)
}

// truncate cuts text to at most max bytes without splitting a rune.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
