package synth

import (
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"incidentcli/internal/dataprocessing"
	"incidentcli/internal/exporter"
	"incidentcli/pkg/contracts/domain"
)

// InvalidDate replaces opened timestamps that should never parse.
const InvalidDate = "not a date"

// HugeOutlier is written over resolution hours to simulate runaway timers.
const HugeOutlier = 9999.0

// WeirdDateLayouts are the alternate spellings injected into opened
// timestamps: day first, month first, slashed ISO and ISO with Z.
var WeirdDateLayouts = []string{
	"02/01/2006 15:04",
	"01/02/2006 15:04",
	"2006/01/02 15:04",
	"2006-01-02T15:04:05Z",
}

// CorruptConfig sets the fraction of rows each step touches.
type CorruptConfig struct {
	Seed                uint64
	DuplicateRate       float64
	MissingPriorityRate float64
	MissingGroupRate    float64
	PriorityVariantRate float64
	WeirdDateRate       float64
	InvalidDateRate     float64
	NegativeRate        float64
	OutlierRate         float64
	SwapRate            float64
	PaddingRate         float64
	// SwapOffset is how far before opened a swapped resolved timestamp lands.
	SwapOffset time.Duration
}

// DefaultCorruptConfig returns the stock corruption rates
func DefaultCorruptConfig() CorruptConfig {
	return CorruptConfig{
		Seed:                DefaultSeed,
		DuplicateRate:       0.01,
		MissingPriorityRate: 0.02,
		MissingGroupRate:    0.02,
		PriorityVariantRate: 0.01,
		WeirdDateRate:       0.015,
		InvalidDateRate:     0.003,
		NegativeRate:        0.005,
		OutlierRate:         0.005,
		SwapRate:            0.005,
		PaddingRate:         0.01,
		SwapOffset:          5 * time.Hour,
	}
}

// Injection reports how many rows one corruption step changed.
type Injection struct {
	Step  string
	Count int
}

// Corruption step names, in application order.
const (
	StepDuplicates      = "duplicates"
	StepMissingPriority = "missing_priority"
	StepMissingGroup    = "missing_assignment_group"
	StepPriorityVariant = "priority_variants"
	StepWeirdDates      = "weird_date_formats"
	StepInvalidDates    = "invalid_dates"
	StepNegative        = "negative_durations"
	StepOutliers        = "huge_outliers"
	StepSwap            = "resolved_before_opened"
	StepPadding         = "padded_assignment_group"
)

type corruptor struct {
	cfg      CorruptConfig
	t        *dataprocessing.Table
	variants map[string][]string
}

// Corrupt returns a dirty copy of t. Every step samples its rows with its own
// generator derived from cfg.Seed, so one rate never shifts another step's
// picks. Steps whose column is absent are skipped. t is not modified.
func Corrupt(t *dataprocessing.Table, cfg CorruptConfig) (*dataprocessing.Table, []Injection) {
	c := &corruptor{cfg: cfg, t: t.Clone(), variants: make(map[string][]string)}
	for p, vs := range domain.DefaultPriorityVariants() {
		for _, v := range vs {
			if v != string(p) {
				c.variants[string(p)] = append(c.variants[string(p)], v)
			}
		}
	}

	steps := []struct {
		name   string
		column string
		fn     func(r *rand.Rand, col int) int
	}{
		{StepDuplicates, "", c.duplicates},
		{StepMissingPriority, domain.ColumnPriority, c.blank(cfg.MissingPriorityRate)},
		{StepMissingGroup, domain.ColumnAssignmentGroup, c.blank(cfg.MissingGroupRate)},
		{StepPriorityVariant, domain.ColumnPriority, c.priorityVariants},
		{StepWeirdDates, domain.ColumnOpenedAt, c.weirdDates},
		{StepInvalidDates, domain.ColumnOpenedAt, c.invalidDates},
		{StepNegative, domain.ColumnResolutionHours, c.negatives},
		{StepOutliers, domain.ColumnResolutionHours, c.outliers},
		{StepSwap, domain.ColumnOpenedAt, c.swaps},
		{StepPadding, domain.ColumnAssignmentGroup, c.padding},
	}

	var report []Injection
	for i, step := range steps {
		col := -1
		if step.column != "" {
			if col = c.t.ColumnIndex(step.column); col < 0 {
				continue
			}
		}
		r := newRand(cfg.Seed + uint64(i) + 1)
		report = append(report, Injection{Step: step.name, Count: step.fn(r, col)})
	}
	return c.t, report
}

// sample picks round(rate*n) distinct row indexes in ascending order.
func (c *corruptor) sample(r *rand.Rand, rate float64) []int {
	n := c.t.Len()
	k := int(math.Round(rate * float64(n)))
	if k <= 0 {
		return nil
	}
	if k > n {
		k = n
	}
	idx := r.Perm(n)[:k]
	slices.Sort(idx)
	return idx
}

func (c *corruptor) duplicates(r *rand.Rand, _ int) int {
	idx := c.sample(r, c.cfg.DuplicateRate)
	for _, i := range idx {
		c.t.Rows = append(c.t.Rows, slices.Clone(c.t.Rows[i]))
	}
	return len(idx)
}

func (c *corruptor) blank(rate float64) func(*rand.Rand, int) int {
	return func(r *rand.Rand, col int) int {
		idx := c.sample(r, rate)
		for _, i := range idx {
			c.t.Rows[i][col] = ""
		}
		return len(idx)
	}
}

// priorityVariants respells known canonical labels. Missing and unknown
// labels in the sample are left alone.
func (c *corruptor) priorityVariants(r *rand.Rand, col int) int {
	changed := 0
	for _, i := range c.sample(r, c.cfg.PriorityVariantRate) {
		vs := c.variants[c.t.Rows[i][col]]
		if len(vs) == 0 {
			continue
		}
		c.t.Rows[i][col] = vs[r.IntN(len(vs))]
		changed++
	}
	return changed
}

func (c *corruptor) weirdDates(r *rand.Rand, col int) int {
	idx := c.sample(r, c.cfg.WeirdDateRate)
	for _, i := range idx {
		ts := dataprocessing.ParseTimestamp(c.t.Rows[i][col])
		if ts == nil {
			continue
		}
		c.t.Rows[i][col] = ts.Format(WeirdDateLayouts[r.IntN(len(WeirdDateLayouts))])
	}
	return len(idx)
}

func (c *corruptor) invalidDates(r *rand.Rand, col int) int {
	idx := c.sample(r, c.cfg.InvalidDateRate)
	for _, i := range idx {
		c.t.Rows[i][col] = InvalidDate
	}
	return len(idx)
}

// negatives flips the sign of stored hours; cells that are not numbers
// become missing.
func (c *corruptor) negatives(r *rand.Rand, col int) int {
	idx := c.sample(r, c.cfg.NegativeRate)
	for _, i := range idx {
		v := dataprocessing.ParseNumber(c.t.Rows[i][col])
		if v == nil {
			c.t.Rows[i][col] = ""
			continue
		}
		c.t.Rows[i][col] = exporter.FormatFloat(-math.Abs(*v))
	}
	return len(idx)
}

func (c *corruptor) outliers(r *rand.Rand, col int) int {
	idx := c.sample(r, c.cfg.OutlierRate)
	for _, i := range idx {
		c.t.Rows[i][col] = exporter.FormatFloat(HugeOutlier)
	}
	return len(idx)
}

// swaps moves resolved before opened where both timestamps parse.
func (c *corruptor) swaps(r *rand.Rand, col int) int {
	resolvedCol := c.t.ColumnIndex(domain.ColumnResolvedAt)
	if resolvedCol < 0 {
		return 0
	}
	changed := 0
	for _, i := range c.sample(r, c.cfg.SwapRate) {
		opened := dataprocessing.ParseTimestamp(c.t.Rows[i][col])
		resolved := dataprocessing.ParseTimestamp(c.t.Rows[i][resolvedCol])
		if opened == nil || resolved == nil {
			continue
		}
		early := opened.Add(-c.cfg.SwapOffset)
		c.t.Rows[i][resolvedCol] = exporter.FormatTimestamp(&early)
		changed++
	}
	return changed
}

func (c *corruptor) padding(r *rand.Rand, col int) int {
	changed := 0
	for _, i := range c.sample(r, c.cfg.PaddingRate) {
		v := c.t.Rows[i][col]
		if strings.TrimSpace(v) == "" {
			continue
		}
		c.t.Rows[i][col] = " " + v + "  "
		changed++
	}
	return changed
}
