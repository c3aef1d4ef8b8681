package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"incidentcli/internal/errors"
	"incidentcli/internal/files"
	"incidentcli/pkg/contracts/domain"
)

// Sheet names of the report workbook, in tab order.
const (
	SheetPriority   = "Priority"
	SheetSLA        = "SLA"
	SheetResolution = "Resolution"
	SheetPipeline   = "Pipeline"
)

const chartCell = "F2"

// WorkbookExporter renders chart data as an Excel workbook with native
// column charts.
type WorkbookExporter struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewWorkbookExporter creates a new workbook exporter
func NewWorkbookExporter(logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{
		files:  files.NewManager(logger),
		logger: logger.With(slog.String("component", "workbook_exporter")),
	}
}

// Export writes the workbook to path atomically.
func (w *WorkbookExporter) Export(path string, data domain.ChartData) error {
	f, err := w.Build(data)
	if err != nil {
		return err
	}
	defer f.Close()

	err = w.files.WriteAtomic(path, func(out io.Writer) error {
		return f.Write(out)
	})
	if err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to write workbook %s", path), err).
			WithContext("path", path)
	}

	w.logger.Info("Workbook written",
		slog.String("path", path),
		slog.Int("priority_rows", len(data.PriorityCounts)),
		slog.Int("histogram_bins", len(data.ResolutionBins)))
	return nil
}

// Build lays out every sheet in memory. The caller closes the file.
func (w *WorkbookExporter) Build(data domain.ChartData) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetPriority); err != nil {
		f.Close()
		return nil, w.buildError(SheetPriority, err)
	}
	for _, name := range []string{SheetSLA, SheetResolution, SheetPipeline} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, w.buildError(name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, w.buildError("styles", err)
	}

	steps := []struct {
		sheet string
		fn    func(*excelize.File, int) error
	}{
		{SheetPriority, func(f *excelize.File, style int) error {
			return writeCategorySheet(f, SheetPriority, "Priority", data.PriorityCounts, style,
				"Incidents per Priority")
		}},
		{SheetSLA, func(f *excelize.File, style int) error {
			return writeCategorySheet(f, SheetSLA, "SLA status", data.SLACounts, style,
				"SLA Status")
		}},
		{SheetResolution, func(f *excelize.File, style int) error {
			return writeResolutionSheet(f, data, style)
		}},
		{SheetPipeline, func(f *excelize.File, style int) error {
			return writePipelineSheet(f, data.Stages, style)
		}},
	}

	for _, step := range steps {
		if err := step.fn(f, header); err != nil {
			f.Close()
			return nil, w.buildError(step.sheet, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func (w *WorkbookExporter) buildError(sheet string, err error) error {
	w.logger.Error("Failed to build workbook sheet",
		slog.String("sheet", sheet),
		slog.String("error", err.Error()))
	return errors.NewStorageError(fmt.Sprintf("failed to build sheet %s", sheet), err).
		WithContext("sheet", sheet)
}

func writeCategorySheet(f *excelize.File, sheet, labelHeader string, counts []domain.CategoryCount, style int, title string) error {
	if err := writeHeader(f, sheet, style, labelHeader, "Incidents", "Percent"); err != nil {
		return err
	}
	if len(counts) == 0 {
		return f.SetCellValue(sheet, "A2", "No data")
	}

	for i, c := range counts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{c.Label, c.Count, c.Percent / 100}); err != nil {
			return err
		}
	}

	last := len(counts) + 1
	pct, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "C2", fmt.Sprintf("C%d", last), pct); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 22); err != nil {
		return err
	}

	return addColumnChart(f, sheet, title,
		fmt.Sprintf("%s!$A$2:$A$%d", sheet, last),
		fmt.Sprintf("%s!$B$2:$B$%d", sheet, last))
}

func writeResolutionSheet(f *excelize.File, data domain.ChartData, style int) error {
	sheet := SheetResolution
	if err := writeHeader(f, sheet, style, "From (h)", "To (h)", "Bin", "Incidents"); err != nil {
		return err
	}
	if len(data.ResolutionBins) == 0 {
		return f.SetCellValue(sheet, "A2", "No resolution hours to plot")
	}

	for i, b := range data.ResolutionBins {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		label := fmt.Sprintf("%.1f-%.1f", b.Lower, b.Upper)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{b.Lower, b.Upper, label, b.Count}); err != nil {
			return err
		}
	}

	if data.ResolutionClip != nil {
		note := fmt.Sprintf("Values clipped at the 99th percentile (%.2f h)", *data.ResolutionClip)
		if err := f.SetCellValue(sheet, "F1", note); err != nil {
			return err
		}
	}

	last := len(data.ResolutionBins) + 1
	return addColumnChart(f, sheet, "Resolution Hours Distribution",
		fmt.Sprintf("%s!$C$2:$C$%d", sheet, last),
		fmt.Sprintf("%s!$D$2:$D$%d", sheet, last))
}

func writePipelineSheet(f *excelize.File, stages []string, style int) error {
	sheet := SheetPipeline
	if err := writeHeader(f, sheet, style, "Step", "Stage"); err != nil {
		return err
	}
	for i, s := range stages {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{i + 1, s}); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "B", "B", 24)
}

func writeHeader(f *excelize.File, sheet string, style int, columns ...string) error {
	row := make([]interface{}, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", end, style)
}

func addColumnChart(f *excelize.File, sheet, title, categories, values string) error {
	return f.AddChart(sheet, chartCell, &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$B$1", sheet),
				Categories: categories,
				Values:     values,
			},
		},
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{
			Width:  640,
			Height: 360,
		},
	})
}
