package excel

import (
	"io"

	"medibot/domain/metrics"
	"medibot/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Sheet names of an exported report
const (
	SheetSummary     = "Summary"
	SheetPerClass    = "PerClass"
	SheetConfusion   = "Confusion"
	SheetCalibration = "Calibration"
)

// ReportWriter exports an evaluation report as an xlsx workbook
type ReportWriter struct {
	report *metrics.Report
}

// NewReportWriter wraps report for export
func NewReportWriter(report *metrics.Report) *ReportWriter {
	return &ReportWriter{report: report}
}

// SaveAs writes the workbook to path
func (w *ReportWriter) SaveAs(path string) error {
	f, err := w.build()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", path)
	}
	return nil
}

// WriteTo streams the workbook to out
func (w *ReportWriter) WriteTo(out io.Writer) (int64, error) {
	f, err := w.build()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := f.WriteTo(out)
	if err != nil {
		return n, errors.Wrap(err, "failed to write workbook")
	}
	return n, nil
}

func (w *ReportWriter) build() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, errors.Wrap(err, "failed to rename summary sheet")
	}
	for _, name := range []string{SheetPerClass, SheetConfusion, SheetCalibration} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, errors.Wrapf(err, "failed to create sheet %s", name)
		}
	}

	s := w.report.Summary
	summary := [][]interface{}{
		{"metric", "value"},
		{"accuracy", s.Accuracy},
		{"accuracy_ci_lower", s.AccuracyInterval.Lower},
		{"accuracy_ci_upper", s.AccuracyInterval.Upper},
		{"macro_f1", s.MacroF1},
		{"top3_recall", s.Top3Recall},
		{"expected_calibration_error", s.ExpectedCalibrationError},
		{"class_count", s.ClassCount},
		{"feature_count", s.FeatureCount},
		{"train_size", s.TrainSize},
		{"test_size", s.TestSize},
		{"seed", w.report.Seed},
		{"test_fraction", w.report.TestFraction},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return nil, err
	}

	perClass := [][]interface{}{{"class", "precision", "recall", "f1", "support"}}
	for _, m := range w.report.PerClass {
		perClass = append(perClass, []interface{}{m.Class, m.Precision, m.Recall, m.F1, m.Support})
	}
	if err := writeRows(f, SheetPerClass, perClass); err != nil {
		return nil, err
	}

	header := []interface{}{"true \\ predicted"}
	for _, c := range w.report.Confusion.Classes {
		header = append(header, c)
	}
	confusion := [][]interface{}{header}
	for i, c := range w.report.Confusion.Classes {
		row := []interface{}{c}
		for _, n := range w.report.Confusion.Counts[i] {
			row = append(row, n)
		}
		confusion = append(confusion, row)
	}
	if err := writeRows(f, SheetConfusion, confusion); err != nil {
		return nil, err
	}

	calibration := [][]interface{}{{"bin", "lower", "upper", "bin_mid", "n", "mean_pred", "frac_pos"}}
	for _, b := range w.report.Calibration {
		calibration = append(calibration, []interface{}{b.Index, b.Lower, b.Upper, b.Mid, b.Count, b.MeanConfidence, b.Accuracy})
	}
	if err := writeRows(f, SheetCalibration, calibration); err != nil {
		return nil, err
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "invalid cell coordinates")
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrapf(err, "failed to write %s row %d", sheet, i+1)
		}
	}
	return nil
}
