package synth

import (
	"math/rand/v2"
	"time"

	"incidentcli/internal/dataprocessing"
	"incidentcli/internal/exporter"
	"incidentcli/pkg/contracts/domain"
)

// Defaults for Generate.
const (
	DefaultCount = 2000
	DefaultSeed  = 42
)

var (
	// AssignmentGroups are the teams incidents are routed to.
	AssignmentGroups = []string{"Network", "Database", "Application", "Security"}

	// FinalStates are the terminal incident states.
	FinalStates = []string{"Resolved", "Closed"}
)

// Header is the column order of generated tables.
var Header = []string{
	domain.ColumnNumber,
	domain.ColumnOpenedAt,
	domain.ColumnResolvedAt,
	domain.ColumnClosedAt,
	domain.ColumnState,
	domain.ColumnPriority,
	domain.ColumnAssignmentGroup,
	domain.ColumnEventsCount,
	domain.ColumnResolutionHours,
}

// GeneratorConfig controls Generate.
type GeneratorConfig struct {
	Count int
	Seed  uint64
	// Now anchors opened timestamps; zero means the current time.
	Now time.Time
}

// DefaultGeneratorConfig returns the stock generator settings
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{Count: DefaultCount, Seed: DefaultSeed}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// between returns a uniform integer in [lo, hi].
func between(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

// Generate builds a clean incident table. Equal configs yield equal tables.
func Generate(cfg GeneratorConfig) *dataprocessing.Table {
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC().Truncate(time.Second)

	r := newRand(cfg.Seed)
	t := &dataprocessing.Table{
		Header: append([]string(nil), Header...),
		Rows:   make([][]string, 0, cfg.Count),
	}

	for i := 0; i < cfg.Count; i++ {
		number := "INC" + exporter.FormatInt(int64(100000+i))
		priority := domain.CanonicalPriorities[r.IntN(len(domain.CanonicalPriorities))]
		opened := now.Add(-time.Duration(between(r, 0, 60))*24*time.Hour -
			time.Duration(between(r, 0, 23))*time.Hour)
		hours := between(r, 1, 72)
		resolved := opened.Add(time.Duration(hours) * time.Hour)
		closed := resolved.Add(time.Duration(between(r, 1, 5)) * time.Hour)
		group := AssignmentGroups[r.IntN(len(AssignmentGroups))]
		state := FinalStates[r.IntN(len(FinalStates))]
		events := between(r, 1, 10)

		t.Rows = append(t.Rows, []string{
			number,
			exporter.FormatTimestamp(&opened),
			exporter.FormatTimestamp(&resolved),
			exporter.FormatTimestamp(&closed),
			state,
			string(priority),
			group,
			exporter.FormatInt(int64(events)),
			exporter.FormatFloat(float64(hours)),
		})
	}
	return t
}
