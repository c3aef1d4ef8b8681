package dataprocessing

import (
	"strconv"

	"incidentcli/internal/exporter"
	"incidentcli/pkg/contracts/domain"
)

// Encode renders the dataset as a header and string rows in output order.
func Encode(ds Dataset) (header []string, rows [][]string) {
	header = ds.Columns()
	rows = make([][]string, len(ds.Records))
	for i, r := range ds.Records {
		row := make([]string, len(header))
		for j, c := range header {
			row[j] = encodeCell(r, c)
		}
		rows[i] = row
	}
	return header, rows
}

func encodeCell(r domain.Incident, column string) string {
	switch column {
	case domain.ColumnNumber:
		return r.Number
	case domain.ColumnOpenedAt:
		return exporter.FormatTimestamp(r.OpenedAt)
	case domain.ColumnResolvedAt:
		return exporter.FormatTimestamp(r.ResolvedAt)
	case domain.ColumnClosedAt:
		return exporter.FormatTimestamp(r.ClosedAt)
	case domain.ColumnPriority:
		return exporter.FormatOptionalString(r.Priority)
	case domain.ColumnState:
		return r.State
	case domain.ColumnAssignmentGroup:
		return exporter.FormatOptionalString(r.AssignmentGroup)
	case domain.ColumnEventsCount:
		return exporter.FormatOptionalInt(r.EventsCount)
	case domain.ColumnResolutionHours:
		return exporter.FormatOptionalFloat(r.ResolutionHours)
	case domain.ColumnSLABreached:
		return exporter.FormatFlag(r.SLABreached)
	case domain.ColumnQuickResolution:
		return exporter.FormatFlag(r.QuickResolution)
	case domain.ColumnPriorityRank:
		if r.PriorityRank == nil {
			return ""
		}
		return strconv.Itoa(*r.PriorityRank)
	}
	return ""
}
