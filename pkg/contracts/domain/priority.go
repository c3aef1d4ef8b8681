package domain

// Priority is one of the four canonical severity tiers.
type Priority string

const (
	PriorityCritical Priority = "1 - Critical"
	PriorityHigh     Priority = "2 - High"
	PriorityModerate Priority = "3 - Moderate"
	PriorityLow      Priority = "4 - Low"
)

// CanonicalPriorities lists the canonical tiers in rank order.
var CanonicalPriorities = []Priority{
	PriorityCritical,
	PriorityHigh,
	PriorityModerate,
	PriorityLow,
}

var priorityRanks = map[Priority]int{
	PriorityCritical: 1,
	PriorityHigh:     2,
	PriorityModerate: 3,
	PriorityLow:      4,
}

// Rank returns the ordinal of a canonical priority. ok is false for any
// label outside the four canonical tiers.
func (p Priority) Rank() (rank int, ok bool) {
	rank, ok = priorityRanks[p]
	return rank, ok
}

// IsCanonical reports whether p is one of the canonical tiers.
func (p Priority) IsCanonical() bool {
	_, ok := priorityRanks[p]
	return ok
}

// PriorityForRank is the inverse of Rank.
func PriorityForRank(rank int) (Priority, bool) {
	if rank < 1 || rank > len(CanonicalPriorities) {
		return "", false
	}
	return CanonicalPriorities[rank-1], true
}

// DefaultPriorityVariants maps every canonical priority to the literal
// spellings accepted for it. Matching is exact.
func DefaultPriorityVariants() map[Priority][]string {
	return map[Priority][]string{
		PriorityCritical: {"1 - Critical", "critical", "Critical", "1-critical", "P1"},
		PriorityHigh:     {"2 - High", "high", "High", "2-high", "P2"},
		PriorityModerate: {"3 - Moderate", "moderate", "Moderate", "3-mod", "P3"},
		PriorityLow:      {"4 - Low", "low", "Low", "4-low", "P4"},
	}
}
