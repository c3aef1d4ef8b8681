package domain

import (
	"time"
)

// Source column names of the incident table as produced by the generator
// and consumed by the cleaning pipeline.
const (
	ColumnNumber          = "number"
	ColumnOpenedAt        = "first_opened_at"
	ColumnResolvedAt      = "last_resolved_at"
	ColumnClosedAt        = "last_closed_at"
	ColumnState           = "final_state"
	ColumnPriority        = "final_priority"
	ColumnAssignmentGroup = "assignment_group_mode"
	ColumnEventsCount     = "events_count"
	ColumnResolutionHours = "resolution_hours"
)

// Derived column names appended by the feature deriver.
const (
	ColumnResolutionHoursFromTime = "resolution_hours_from_time"
	ColumnSLABreached             = "sla_breached"
	ColumnQuickResolution         = "quick_resolution"
	ColumnPriorityRank            = "priority_rank"
)

// KeptColumns lists the source columns carried into the cleaned output, in
// output order. Columns missing from the input are skipped.
var KeptColumns = []string{
	ColumnNumber,
	ColumnOpenedAt,
	ColumnResolvedAt,
	ColumnClosedAt,
	ColumnPriority,
	ColumnState,
	ColumnAssignmentGroup,
	ColumnEventsCount,
	ColumnResolutionHours,
}

// DerivedColumns lists the columns computed by the pipeline, in output order.
var DerivedColumns = []string{
	ColumnSLABreached,
	ColumnQuickResolution,
	ColumnPriorityRank,
}

// Incident is a single incident row. Pointer fields are nil when the value is
// missing or could not be parsed.
type Incident struct {
	Number          string     `json:"number" db:"number"`
	OpenedAt        *time.Time `json:"first_opened_at,omitempty" db:"first_opened_at"`
	ResolvedAt      *time.Time `json:"last_resolved_at,omitempty" db:"last_resolved_at"`
	ClosedAt        *time.Time `json:"last_closed_at,omitempty" db:"last_closed_at"`
	Priority        *string    `json:"final_priority,omitempty" db:"final_priority"`
	State           string     `json:"final_state" db:"final_state"`
	AssignmentGroup *string    `json:"assignment_group_mode,omitempty" db:"assignment_group_mode"`
	EventsCount     *int64     `json:"events_count,omitempty" db:"events_count"`

	// StoredResolutionHours is the resolution_hours cell as read from the
	// input, before reconciliation.
	StoredResolutionHours *string `json:"-" db:"-"`

	ResolutionHours         *float64 `json:"resolution_hours,omitempty" db:"resolution_hours"`
	ResolutionHoursFromTime *float64 `json:"-" db:"-"`

	SLABreached     *bool `json:"sla_breached,omitempty" db:"sla_breached"`
	QuickResolution *bool `json:"quick_resolution,omitempty" db:"quick_resolution"`
	PriorityRank    *int  `json:"priority_rank,omitempty" db:"priority_rank"`
}

// Clone returns a deep copy of the incident so that stages never share
// pointer fields with their input.
func (i Incident) Clone() Incident {
	out := i
	out.OpenedAt = clonePtr(i.OpenedAt)
	out.ResolvedAt = clonePtr(i.ResolvedAt)
	out.ClosedAt = clonePtr(i.ClosedAt)
	out.Priority = clonePtr(i.Priority)
	out.AssignmentGroup = clonePtr(i.AssignmentGroup)
	out.EventsCount = clonePtr(i.EventsCount)
	out.StoredResolutionHours = clonePtr(i.StoredResolutionHours)
	out.ResolutionHours = clonePtr(i.ResolutionHours)
	out.ResolutionHoursFromTime = clonePtr(i.ResolutionHoursFromTime)
	out.SLABreached = clonePtr(i.SLABreached)
	out.QuickResolution = clonePtr(i.QuickResolution)
	out.PriorityRank = clonePtr(i.PriorityRank)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
