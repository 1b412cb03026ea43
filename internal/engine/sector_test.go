package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/tollgate/internal/config"
)

func TestClassifySector(t *testing.T) {
	sectors := []config.Sector{
		{Name: "AI Infrastructure", Weight: 1.5, Keywords: []string{"llm", "gpu", "inference"}},
		{Name: "Data Infrastructure", Weight: 1.3, Keywords: []string{"etl", "data pipeline", "warehouse"}},
		{Name: "Developer Tools", Weight: 1.2, Keywords: []string{"sdk", "devops"}},
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "single keyword",
			text: "running LLM workloads at scale",
			want: "AI Infrastructure",
		},
		{
			name: "most weighted hits wins",
			text: "an etl data pipeline feeding the warehouse, with one gpu",
			want: "Data Infrastructure", // 3 hits * 1.3 beats 1 hit * 1.5
		},
		{
			name: "weight breaks equal hit counts",
			text: "gpu inference for the devops sdk",
			want: "AI Infrastructure", // 2 * 1.5 beats 2 * 1.2
		},
		{
			name: "no match",
			text: "completely unrelated gardening content",
			want: SectorUncategorized,
		},
		{
			name: "case insensitive",
			text: "ETL everywhere",
			want: "Data Infrastructure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySector(tt.text, sectors))
		})
	}
}

func TestClassifySectorTieGoesToEarliest(t *testing.T) {
	sectors := []config.Sector{
		{Name: "First", Weight: 1.0, Keywords: []string{"alpha"}},
		{Name: "Second", Weight: 1.0, Keywords: []string{"beta"}},
	}
	assert.Equal(t, "First", ClassifySector("alpha and beta together", sectors))
}
