// Package exporter writes pipeline results to disk.
//
// CSVWriter renders the cleaned incident table. Files are written through
// files.Manager so a failed run never leaves a truncated output behind, and
// an optional UTF-8 BOM keeps Excel from guessing the encoding.
//
// The Format* helpers fix the textual form of every cell: timestamps as
// "2006-01-02 15:04:05", floats in shortest form with a trailing ".0",
// flags as 1/0, and missing values as empty strings.
//
// WorkbookExporter builds the report workbook: one sheet each for priority
// counts, SLA status and the resolution-hours histogram, each with a native
// column chart, plus a sheet listing the pipeline stages.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.WriteCSV("incidents_clean.csv", exporter.WriteOptions{
//		Headers: header,
//		Records: rows,
//	})
//
//	wb := exporter.NewWorkbookExporter(logger)
//	err = wb.Export("incident_report.xlsx", chartData)
package exporter
