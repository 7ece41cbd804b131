package radar

// Section names for derived action items.
const (
	SectionImmediateMove   = "immediate_move"
	SectionStrategicTool   = "strategic_tool"
	SectionAnalyticalCheck = "analytical_check"
	SectionLongTermFix     = "long_term_fix"
)

// Sections lists the four fixed action-item categories in display order.
var Sections = []string{
	SectionImmediateMove,
	SectionStrategicTool,
	SectionAnalyticalCheck,
	SectionLongTermFix,
}

// Axes is the nested radar sub-object of five axis scores. Each axis is
// independently optional.
type Axes struct {
	Authority    *float64 `json:"authority,omitempty"`
	Manipulation *float64 `json:"manipulation,omitempty"`
	Empathy      *float64 `json:"empathy,omitempty"`
	Volatility   *float64 `json:"volatility,omitempty"`
	Resilience   *float64 `json:"resilience,omitempty"`
}

// ActionItem is one derived recommendation before persistence.
type ActionItem struct {
	Section string `json:"section"`
	Text    string `json:"text"`
}

// Result is the canonical normalized shape of one AI response. It is the
// contract between the invocation stage and the persistence step; absent
// fields stay nil, they are never fabricated.
type Result struct {
	PowerScore       *float64       `json:"powerScore,omitempty"`
	GravityScore     *float64       `json:"gravityScore,omitempty"`
	RiskScore        *float64       `json:"riskScore,omitempty"`
	Confidence       *float64       `json:"confidence,omitempty"`
	TLDR             *string        `json:"tldr,omitempty"`
	Diagnosis        *string        `json:"diagnosis,omitempty"`
	Strategy         *string        `json:"strategy,omitempty"`
	RiskFlags        []string       `json:"riskFlags,omitempty"`
	Radar            Axes           `json:"radar"`
	Profile          map[string]any `json:"profile,omitempty"`
	ActionItems      []ActionItem   `json:"actionItems,omitempty"`
	SourcesConfirmed bool           `json:"sourcesConfirmed"`
	LatencyMS        int64          `json:"latencyMs"`
}

// HasCoreScores reports whether all three core scores are present.
func (r Result) HasCoreScores() bool {
	return r.PowerScore != nil && r.GravityScore != nil && r.RiskScore != nil
}

// Flatten produces the display payload for immediate UI consumption:
// exactly one key per canonical field, every optional defaulted to a
// safe value (0 for scores, empty string for text).
func (r Result) Flatten() map[string]any {
	return map[string]any{
		"powerScore":   scoreOrZero(r.PowerScore),
		"gravityScore": scoreOrZero(r.GravityScore),
		"riskScore":    scoreOrZero(r.RiskScore),
		"confidence":   scoreOrZero(r.Confidence),
		"tldr":         textOrEmpty(r.TLDR),
		"diagnosis":    textOrEmpty(r.Diagnosis),
		"strategy":     textOrEmpty(r.Strategy),
		"riskFlags":    flagsOrEmpty(r.RiskFlags),
		"radar": map[string]any{
			"authority":    scoreOrZero(r.Radar.Authority),
			"manipulation": scoreOrZero(r.Radar.Manipulation),
			"empathy":      scoreOrZero(r.Radar.Empathy),
			"volatility":   scoreOrZero(r.Radar.Volatility),
			"resilience":   scoreOrZero(r.Radar.Resilience),
		},
		"profile":          profileOrEmpty(r.Profile),
		"actionItems":      itemsOrEmpty(r.ActionItems),
		"sourcesConfirmed": r.SourcesConfirmed,
		"latencyMs":        r.LatencyMS,
	}
}

func scoreOrZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}

func textOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func flagsOrEmpty(value []string) []string {
	if value == nil {
		return []string{}
	}
	return value
}

func profileOrEmpty(value map[string]any) map[string]any {
	if value == nil {
		return map[string]any{}
	}
	return value
}

func itemsOrEmpty(value []ActionItem) []ActionItem {
	if value == nil {
		return []ActionItem{}
	}
	return value
}
