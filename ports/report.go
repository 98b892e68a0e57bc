package ports

import (
	"context"

	"epmstat/domain/epm"
)

// ReportWriter serializes a finished analysis report into user-facing
// artifacts (supplementary tables, workbook, run summary).
type ReportWriter interface {
	WriteReport(ctx context.Context, report *epm.AnalysisReport) error
}

// ResultRepository persists analysis runs for later retrieval. Optional: the
// pipeline runs fine without one.
type ResultRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveReport(ctx context.Context, report *epm.AnalysisReport) error
}
