package queryeval

import "github.com/brightloom/filescan/internal/ferrors"

func validateQuery(q SearchQuery) error {
	if q.MinSize < 0 {
		return ferrors.NewQueryError("min_size", "must not be negative", nil)
	}
	if q.MaxSize < 0 {
		return ferrors.NewQueryError("max_size", "must not be negative", nil)
	}
	if q.MaxSize > 0 && q.MinSize > q.MaxSize {
		return ferrors.NewQueryError("min_size", "must not exceed max_size", nil)
	}
	if q.MaxResults < 0 {
		return ferrors.NewQueryError("max_results", "must not be negative", nil)
	}
	if q.Timeout < 0 {
		return ferrors.NewQueryError("timeout", "must not be negative", nil)
	}
	return nil
}
