package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityRankBijection(t *testing.T) {
	for i, p := range CanonicalPriorities {
		rank, ok := p.Rank()
		assert.True(t, ok, p)
		assert.Equal(t, i+1, rank)

		back, ok := PriorityForRank(rank)
		assert.True(t, ok)
		assert.Equal(t, p, back)
	}
}

func TestPriorityRank_Unknown(t *testing.T) {
	tests := []Priority{"critical", "P1", "", "5 - Planning"}

	for _, p := range tests {
		t.Run(string(p), func(t *testing.T) {
			_, ok := p.Rank()
			assert.False(t, ok)
			assert.False(t, p.IsCanonical())
		})
	}

	_, ok := PriorityForRank(0)
	assert.False(t, ok)
	_, ok = PriorityForRank(5)
	assert.False(t, ok)
}

func TestDefaultPriorityVariants(t *testing.T) {
	variants := DefaultPriorityVariants()

	assert.Len(t, variants, len(CanonicalPriorities))
	seen := make(map[string]Priority)
	for canonical, list := range variants {
		assert.Contains(t, list, string(canonical), "canonical label must map to itself")
		for _, v := range list {
			if prev, dup := seen[v]; dup {
				t.Errorf("variant %q claimed by both %s and %s", v, prev, canonical)
			}
			seen[v] = canonical
		}
	}
}
