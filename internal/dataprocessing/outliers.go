package dataprocessing

import (
	"incidentcli/internal/errors"
	"incidentcli/pkg/contracts/domain"
)

// ClampResult describes what ClampOutliers did.
type ClampResult struct {
	// Dropped counts records removed for a negative duration.
	Dropped int
	// Clamped counts values lowered to the cap.
	Clamped int
	// Cap is the quantile the values were clamped to, nil when no
	// non-null values remained.
	Cap *float64
}

// ClampOutliers removes records with a negative resolution_hours, then
// computes the q-th quantile of the remaining non-null values and lowers
// every value above it to the quantile. The drop happens first so negative
// values never influence the cap.
func ClampOutliers(ds Dataset, q float64) (Dataset, ClampResult, error) {
	var res ClampResult
	if !ds.Has(domain.ColumnResolutionHours) {
		return ds, res, errors.NewMissingColumnError(StageClamp, domain.ColumnResolutionHours)
	}

	kept := make([]domain.Incident, 0, len(ds.Records))
	for _, r := range ds.Records {
		if r.ResolutionHours != nil && *r.ResolutionHours < 0 {
			res.Dropped++
			continue
		}
		kept = append(kept, r.Clone())
	}

	out := ds.derive(kept)
	capHours, ok := Quantile(out.ResolutionValues(), q)
	if !ok {
		return out, res, nil
	}
	res.Cap = &capHours

	for i := range out.Records {
		r := &out.Records[i]
		if r.ResolutionHours != nil && *r.ResolutionHours > capHours {
			r.ResolutionHours = domain.Ptr(capHours)
			res.Clamped++
		}
	}
	return out, res, nil
}
