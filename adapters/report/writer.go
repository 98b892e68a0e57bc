package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"epmstat/domain/epm"
	"epmstat/internal"

	"github.com/gomarkdown/markdown"
	"github.com/xuri/excelize/v2"
)

// Writer serializes an analysis report into the supplementary tables the
// study ships with: per-group result tables (S1, S2), the subject-level
// primary-outcome tables (S3, S5), the locomotion control table (S4) and the
// condition descriptives, as CSV files plus a single workbook. A Markdown run
// summary is written alongside and rendered to HTML.
type Writer struct {
	outDir string
	log    *internal.Logger
}

// NewWriter creates a report writer targeting outDir.
func NewWriter(outDir string) *Writer {
	return &Writer{outDir: outDir, log: internal.DefaultLogger}
}

// table is one output table: a sheet in the workbook and a CSV file.
type table struct {
	sheet    string
	fileName string
	header   []string
	rows     [][]string
}

// WriteReport writes all artifacts for one run.
func (w *Writer) WriteReport(ctx context.Context, report *epm.AnalysisReport) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tables := []table{
		resultsTable("S1_PD", "Supplementary_Table_S1_EPM_PD.csv", report.GroupResults(epm.GroupPD)),
		resultsTable("S2_Control", "Supplementary_Table_S2_EPM_Control.csv", report.GroupResults(epm.GroupControl)),
		subjectLevelTable(report),
		locomotionTable(report),
		withinSubjectTable(report),
		descriptivesTable(report),
	}

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.writeCSV(t); err != nil {
			return err
		}
	}
	if err := w.writeWorkbook(tables); err != nil {
		return err
	}
	if err := w.writeSummary(report); err != nil {
		return err
	}

	w.log.Info("report for run %s written to %s", report.RunID.String(), w.outDir)
	return nil
}

func resultsTable(sheet, fileName string, results []epm.CorrectedResult) table {
	t := table{
		sheet:    sheet,
		fileName: fileName,
		header: []string{
			"Parameter", "Group", "Designation", "Status", "Test",
			"Statistic", "p_raw", "p_holm", "Significant", "Cohens_dz", "n",
		},
	}
	for _, r := range results {
		t.rows = append(t.rows, []string{
			r.Parameter,
			string(r.Group),
			string(epm.DesignationOf(r.Parameter)),
			string(r.Status),
			string(r.Kind),
			fmtFloat(r.Statistic),
			fmtFloat(r.PValue),
			fmtFloat(r.PHolm),
			fmt.Sprintf("%t", r.Significant),
			fmtFloat(r.Dz),
			fmt.Sprintf("%d", r.N),
		})
	}
	return t
}

func subjectLevelTable(report *epm.AnalysisReport) table {
	t := table{
		sheet:    "S3_SubjectLevel",
		fileName: "Supplementary_Table_S3_EPM_SubjectLevel.csv",
		header:   []string{"Subject", "No-Stim", "Stim", "Delta_Stim_minus_NoStim", "Direction", "Parameter"},
	}
	for _, r := range report.SubjectResponses {
		if r.Subject.Group != epm.GroupPD {
			continue
		}
		t.rows = append(t.rows, []string{
			subjectLabel(r.Subject),
			fmtFloat(r.Off),
			fmtFloat(r.On),
			fmtFloat(r.Delta),
			string(r.Direction),
			r.Parameter,
		})
	}
	return t
}

func locomotionTable(report *epm.AnalysisReport) table {
	t := table{
		sheet:    "S4_Locomotion",
		fileName: "Supplementary_Table_S4_EPM_LocomotionControl.csv",
		header:   []string{"Parameter", "Status", "Statistic", "p_value", "Cohens_dz", "n"},
	}
	for _, r := range report.Locomotion {
		t.rows = append(t.rows, []string{
			r.Parameter,
			string(r.Status),
			fmtFloat(r.Statistic),
			fmtFloat(r.PValue),
			fmtFloat(r.Dz),
			fmt.Sprintf("%d", r.N),
		})
	}
	return t
}

func withinSubjectTable(report *epm.AnalysisReport) table {
	t := table{
		sheet:    "S5_WithinSubject",
		fileName: "Supplementary_Table_S5_EPM_WithinSubject.csv",
		header:   []string{"Subject", "No-Stim", "Stim", "Delta_Stim_minus_NoStim", "Percent_Change", "Parameter"},
	}
	for _, r := range report.SubjectResponses {
		if r.Subject.Group != epm.GroupPD {
			continue
		}
		t.rows = append(t.rows, []string{
			subjectLabel(r.Subject),
			fmtFloat(r.Off),
			fmtFloat(r.On),
			fmtFloat(r.Delta),
			fmtFloat(r.PercentChange),
			r.Parameter,
		})
	}
	return t
}

func descriptivesTable(report *epm.AnalysisReport) table {
	t := table{
		sheet:    "Descriptives",
		fileName: "Supplementary_Table_EPM_Descriptives.csv",
		header:   []string{"Parameter", "Group", "Condition", "N", "Mean", "SD", "Median", "Q25", "Q75", "Min", "Max"},
	}
	for _, b := range report.Summaries {
		t.rows = append(t.rows, []string{
			b.Parameter,
			string(b.Group),
			string(b.Condition),
			fmt.Sprintf("%d", b.Summary.N),
			fmtFloat(b.Summary.Mean),
			fmtFloat(b.Summary.StdDev),
			fmtFloat(b.Summary.Median),
			fmtFloat(b.Summary.Q25),
			fmtFloat(b.Summary.Q75),
			fmtFloat(b.Summary.Min),
			fmtFloat(b.Summary.Max),
		})
	}
	return t
}

func (w *Writer) writeCSV(t table) error {
	path := filepath.Join(w.outDir, t.fileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(t.header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.rows); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func (w *Writer) writeWorkbook(tables []table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.sheet); err != nil {
				return err
			}
		} else {
			if _, err := f.NewSheet(t.sheet); err != nil {
				return err
			}
		}

		for col, name := range t.header {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(t.sheet, cell, name); err != nil {
				return err
			}
		}
		for row, values := range t.rows {
			for col, value := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row+2)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(t.sheet, cell, value); err != nil {
					return err
				}
			}
		}
	}

	return f.SaveAs(filepath.Join(w.outDir, "EPM_Results.xlsx"))
}

func (w *Writer) writeSummary(report *epm.AnalysisReport) error {
	md := SummaryMarkdown(report)

	mdPath := filepath.Join(w.outDir, "summary.md")
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	html := markdown.ToHTML([]byte(md), nil, nil)
	htmlPath := filepath.Join(w.outDir, "summary.html")
	if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
		return fmt.Errorf("failed to write summary html: %w", err)
	}
	return nil
}

// SummaryMarkdown renders the human-readable run summary. The CLI prints it
// and the writer persists it next to the tables.
func SummaryMarkdown(report *epm.AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# EPM Analysis Run %s\n\n", report.RunID.String())
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "Alpha: %g, response epsilon: %g\n\n", report.Alpha, report.ResponseEpsilon)

	for _, gr := range report.Groups {
		fmt.Fprintf(&b, "## %s group\n\n", gr.Group)

		var significant, untestable, degenerate []string
		for _, r := range gr.Results {
			switch {
			case r.Significant:
				significant = append(significant, fmt.Sprintf("%s (%s, p_holm=%s, dz=%s)",
					r.Parameter, r.Kind, fmtFloat(r.PHolm), fmtFloat(r.Dz)))
			case r.Status == epm.StatusUntestable:
				untestable = append(untestable, r.Parameter)
			case r.Status == epm.StatusDegenerate:
				degenerate = append(degenerate, r.Parameter)
			}
		}

		fmt.Fprintf(&b, "- Parameters analyzed: %d\n", len(gr.Results))
		if len(significant) > 0 {
			fmt.Fprintf(&b, "- Significant after Holm correction:\n")
			for _, s := range significant {
				fmt.Fprintf(&b, "  - %s\n", s)
			}
		} else {
			fmt.Fprintf(&b, "- No parameters significant after Holm correction\n")
		}
		if len(untestable) > 0 {
			fmt.Fprintf(&b, "- Untestable (fewer than 2 complete pairs): %s\n", strings.Join(untestable, ", "))
		}
		if len(degenerate) > 0 {
			fmt.Fprintf(&b, "- Degenerate (zero-variance differences): %s\n", strings.Join(degenerate, ", "))
		}
		b.WriteString("\n")
	}

	if len(report.BadColumns) > 0 {
		b.WriteString("## Skipped columns\n\n")
		for _, c := range report.BadColumns {
			fmt.Fprintf(&b, "- `%s`: %s\n", c.Label, c.Reason)
		}
		b.WriteString("\n")
	}

	if len(report.PartialSubjects) > 0 {
		b.WriteString("## Partial subjects\n\n")
		for _, p := range report.PartialSubjects {
			fmt.Fprintf(&b, "- %s missing %s for %s\n", subjectLabel(p.Subject), p.Missing, p.Parameter)
		}
	}

	return b.String()
}

func subjectLabel(s epm.SubjectKey) string {
	prefix := "PD"
	if s.Group == epm.GroupControl {
		prefix = "CO"
	}
	return fmt.Sprintf("%s_%d", prefix, s.Index)
}

func fmtFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.6g", v)
}
