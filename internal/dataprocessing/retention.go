package dataprocessing

import (
	"incidentcli/internal/errors"
	"incidentcli/pkg/contracts/domain"
)

// DropMissingOpened keeps only records with a first_opened_at value.
func DropMissingOpened(ds Dataset) (Dataset, error) {
	if !ds.Has(domain.ColumnOpenedAt) {
		return ds, errors.NewMissingColumnError(StageRetention, domain.ColumnOpenedAt)
	}

	kept := make([]domain.Incident, 0, len(ds.Records))
	for _, r := range ds.Records {
		if r.OpenedAt != nil {
			kept = append(kept, r.Clone())
		}
	}
	return ds.derive(kept), nil
}
