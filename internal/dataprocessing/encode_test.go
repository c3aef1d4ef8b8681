package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"incidentcli/pkg/contracts/domain"
)

func TestEncode(t *testing.T) {
	opened := time.Date(2024, 4, 3, 9, 15, 0, 500_000_000, time.UTC)
	ds := NewDataset(
		append(append([]string(nil), domain.KeptColumns...), domain.DerivedColumns...),
		[]domain.Incident{
			{
				Number:          "INC1",
				OpenedAt:        &opened,
				Priority:        domain.Ptr("weird"),
				State:           "Closed",
				AssignmentGroup: domain.Ptr("Network"),
				EventsCount:     domain.Ptr(int64(7)),
				ResolutionHours: domain.Ptr(48.0),
				SLABreached:     domain.Ptr(true),
				QuickResolution: domain.Ptr(false),
			},
			{Number: "INC2"},
		},
	)

	header, rows := Encode(ds)

	assert.Equal(t, []string{
		"number", "first_opened_at", "last_resolved_at", "last_closed_at", "final_priority",
		"final_state", "assignment_group_mode", "events_count", "resolution_hours",
		"sla_breached", "quick_resolution", "priority_rank",
	}, header)
	assert.Equal(t, []string{
		"INC1", "2024-04-03 09:15:00.5", "", "", "weird",
		"Closed", "Network", "7", "48.0",
		"1", "0", "",
	}, rows[0])
	assert.Equal(t, []string{"INC2", "", "", "", "", "", "", "", "", "", "", ""}, rows[1])
}
