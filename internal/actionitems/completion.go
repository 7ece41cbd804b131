package actionitems

import (
	"math"

	"radar-backend/internal/radar"
)

// CompletionBySection computes the per-section completion percentage:
// round(100 * completed / total), 0 for sections with no items. Every
// fixed section appears in the output.
func CompletionBySection(items []ActionItem) map[string]int {
	completed := make(map[string]int, len(radar.Sections))
	total := make(map[string]int, len(radar.Sections))
	for _, item := range items {
		total[item.Section]++
		if item.Completed {
			completed[item.Section]++
		}
	}
	out := make(map[string]int, len(radar.Sections))
	for _, section := range radar.Sections {
		if total[section] == 0 {
			out[section] = 0
			continue
		}
		out[section] = int(math.Round(100 * float64(completed[section]) / float64(total[section])))
	}
	return out
}
