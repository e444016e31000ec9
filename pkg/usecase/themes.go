package usecase

import (
	"context"
)

// GlobalThemes re-aggregates every stored batch summary into one
// cross-batch theme report. Returns aggregator.NoDataReport when no
// summaries have been stored yet.
func (uc *UseCases) GlobalThemes(ctx context.Context) (string, error) {
	return uc.aggregator.Run(ctx)
}
