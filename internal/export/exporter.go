package export

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/report"
)

// Exporter recomputes a monthly summary from the ledger and appends it to
// the archive. Recomputing at consume time means the archive always gets
// the current state, not whatever the ledger held when the message was
// published.
type Exporter struct {
	engine *report.Engine
	writer SummaryWriter
}

func NewExporter(engine *report.Engine, writer SummaryWriter) *Exporter {
	return &Exporter{engine: engine, writer: writer}
}

func (e *Exporter) Export(ctx context.Context, ownerID, month string) error {
	summary, err := e.engine.MonthlySummary(ctx, ownerID, month)
	if err != nil {
		return fmt.Errorf("compute summary %s: %w", month, err)
	}

	ref, err := e.writer.Append(ctx, ownerID, summary)
	if err != nil {
		return fmt.Errorf("append summary %s: %w", month, err)
	}

	slog.InfoContext(ctx, "Summary exported",
		"owner", ownerID,
		"month", month,
		"ref", ref,
		"net_balance", summary.NetBalance.String())

	return nil
}
