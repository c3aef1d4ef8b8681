package dataprocessing

import (
	"incidentcli/internal/errors"
	"incidentcli/pkg/contracts/domain"
)

// FeatureThresholds are the hour limits behind the derived flags.
type FeatureThresholds struct {
	SLAHours   float64
	QuickHours float64
}

// DeriveFeatures computes sla_breached and quick_resolution from
// resolution_hours and priority_rank from the canonical priority. A null
// input yields a null output, never false.
func DeriveFeatures(ds Dataset, th FeatureThresholds) (Dataset, error) {
	hasHours := ds.Has(domain.ColumnResolutionHours)
	hasPriority := ds.Has(domain.ColumnPriority)
	if !hasHours && !hasPriority {
		return ds, errors.NewMissingColumnError(StageFeatures,
			domain.ColumnResolutionHours, domain.ColumnPriority)
	}

	records := ds.cloneRecords()
	for i := range records {
		r := &records[i]
		r.SLABreached, r.QuickResolution, r.PriorityRank = nil, nil, nil

		if h := r.ResolutionHours; h != nil {
			r.SLABreached = domain.Ptr(*h > th.SLAHours)
			r.QuickResolution = domain.Ptr(*h < th.QuickHours)
		}
		if r.Priority != nil {
			if rank, ok := domain.Priority(*r.Priority).Rank(); ok {
				r.PriorityRank = &rank
			}
		}
	}

	var added []string
	if hasHours {
		added = append(added, domain.ColumnSLABreached, domain.ColumnQuickResolution)
	}
	if hasPriority {
		added = append(added, domain.ColumnPriorityRank)
	}
	return ds.derive(records, added...), nil
}
