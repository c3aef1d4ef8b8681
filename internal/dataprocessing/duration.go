package dataprocessing

import (
	"incidentcli/internal/errors"
	"incidentcli/pkg/contracts/domain"
)

// ReconcileDurations sets resolution_hours. When both timestamps exist the
// elapsed hours between them win; otherwise the stored value coerced to a
// number is used, and a non-numeric stored value becomes null. It returns
// how many records took the computed value.
func ReconcileDurations(ds Dataset) (Dataset, int, error) {
	canCompute := ds.Has(domain.ColumnOpenedAt) && ds.Has(domain.ColumnResolvedAt)
	hasStored := ds.Has(domain.ColumnResolutionHours)
	if !canCompute && !hasStored {
		return ds, 0, errors.NewMissingColumnError(StageDuration,
			domain.ColumnOpenedAt, domain.ColumnResolvedAt, domain.ColumnResolutionHours)
	}

	records := ds.cloneRecords()
	computed := 0
	for i := range records {
		r := &records[i]

		r.ResolutionHoursFromTime = nil
		if canCompute && r.OpenedAt != nil && r.ResolvedAt != nil {
			h := r.ResolvedAt.Sub(*r.OpenedAt).Hours()
			r.ResolutionHoursFromTime = &h
		}

		switch {
		case r.ResolutionHoursFromTime != nil:
			r.ResolutionHours = domain.Ptr(*r.ResolutionHoursFromTime)
			computed++
		case r.StoredResolutionHours != nil:
			r.ResolutionHours = ParseNumber(*r.StoredResolutionHours)
		default:
			r.ResolutionHours = nil
		}
	}

	return ds.derive(records, domain.ColumnResolutionHours), computed, nil
}
