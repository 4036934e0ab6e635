package export

import (
	"context"
	"errors"
	"testing"

	"bilancio/internal/core"
	"bilancio/internal/report"
)

type stubLedger struct {
	expenses report.ExpenseStats
	income   report.IncomeStats
	err      error
}

func (l *stubLedger) ExpenseStats(context.Context, string, core.Period) (report.ExpenseStats, error) {
	return l.expenses, l.err
}

func (l *stubLedger) IncomeStats(context.Context, string, core.Period) (report.IncomeStats, error) {
	return l.income, l.err
}

func (l *stubLedger) SumExpenses(context.Context, string, core.Period) (core.Money, error) {
	return l.expenses.Sum, l.err
}

func (l *stubLedger) ExpensesByDay(context.Context, string, core.Period) ([]report.DayStat, error) {
	return nil, l.err
}

func (l *stubLedger) CategoryTotals(context.Context, string, core.Period) ([]report.CategoryStat, error) {
	return nil, l.err
}

type recordingWriter struct {
	owners  []string
	months  []string
	failure error
}

func (w *recordingWriter) Append(_ context.Context, ownerID string, s report.Summary) (string, error) {
	if w.failure != nil {
		return "", w.failure
	}
	w.owners = append(w.owners, ownerID)
	w.months = append(w.months, s.Month)
	return "row:1", nil
}

func TestExport(t *testing.T) {
	ledger := &stubLedger{
		expenses: report.ExpenseStats{Count: 2, Sum: core.MoneyFromCents(5000)},
		income:   report.IncomeStats{Count: 1, Sum: core.MoneyFromCents(100000)},
	}
	writer := &recordingWriter{}
	exporter := NewExporter(report.New(ledger), writer)

	if err := exporter.Export(context.Background(), "alice", "2025-03"); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(writer.months) != 1 || writer.months[0] != "2025-03" || writer.owners[0] != "alice" {
		t.Errorf("appended = %v/%v, want alice/2025-03", writer.owners, writer.months)
	}
}

func TestExportInvalidMonth(t *testing.T) {
	writer := &recordingWriter{}
	exporter := NewExporter(report.New(&stubLedger{}), writer)

	err := exporter.Export(context.Background(), "alice", "2025-13")
	if !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("Export() error = %v, want ErrInvalidMonth", err)
	}
	if len(writer.months) != 0 {
		t.Error("invalid month must not reach the writer")
	}
}

func TestExportWriterFailure(t *testing.T) {
	writer := &recordingWriter{failure: errors.New("sheet unavailable")}
	exporter := NewExporter(report.New(&stubLedger{}), writer)

	if err := exporter.Export(context.Background(), "alice", "2025-03"); err == nil {
		t.Fatal("Export() with failing writer, want error")
	}
}
