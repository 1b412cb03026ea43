package engine

import (
	"strings"

	"github.com/example/tollgate/internal/config"
)

// SectorUncategorized is returned when no sector keyword matches at all.
const SectorUncategorized = "Uncategorized"

// ClassifySector assigns the argmax sector by weighted keyword occurrence.
// Ties go to the earliest-declared sector, which the strict > comparison
// gives us for free since sectors are scanned in declaration order.
func ClassifySector(text string, sectors []config.Sector) string {
	lower := strings.ToLower(text)

	best := SectorUncategorized
	bestScore := 0.0
	for _, s := range sectors {
		hits := 0
		for _, kw := range s.Keywords {
			k := strings.ToLower(strings.TrimSpace(kw))
			if k == "" {
				continue
			}
			if strings.Contains(lower, k) {
				hits++
			}
		}
		score := float64(hits) * s.Weight
		if score > bestScore {
			bestScore = score
			best = s.Name
		}
	}
	return best
}
