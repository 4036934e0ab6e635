// Package export defines the outbound port for archiving monthly
// summaries outside the service.
package export

import (
	"context"

	"bilancio/internal/report"
)

// SummaryWriter appends one owner's monthly summary to an external
// archive and returns a reference to the written row.
type SummaryWriter interface {
	Append(ctx context.Context, ownerID string, s report.Summary) (rowRef string, err error)
}
