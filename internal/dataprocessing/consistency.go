package dataprocessing

import (
	"incidentcli/internal/errors"
	"incidentcli/pkg/contracts/domain"
)

// FixTemporalOrder nulls last_resolved_at wherever it precedes
// first_opened_at. No record is removed. It returns the number of
// timestamps nulled.
func FixTemporalOrder(ds Dataset) (Dataset, int, error) {
	if !ds.Has(domain.ColumnOpenedAt) || !ds.Has(domain.ColumnResolvedAt) {
		return ds, 0, errors.NewMissingColumnError(StageConsistency,
			domain.ColumnOpenedAt, domain.ColumnResolvedAt)
	}

	records := ds.cloneRecords()
	fixed := 0
	for i := range records {
		r := &records[i]
		if r.OpenedAt != nil && r.ResolvedAt != nil && r.ResolvedAt.Before(*r.OpenedAt) {
			r.ResolvedAt = nil
			fixed++
		}
	}
	return ds.derive(records), fixed, nil
}
