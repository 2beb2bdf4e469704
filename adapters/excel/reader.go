package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"medibot/internal"
	"medibot/internal/errors"
	"medibot/internal/tabular"

	"github.com/xuri/excelize/v2"
)

// DataReader loads a symptom dataset from a delimited text or xlsx file
type DataReader struct {
	filePath  string
	fileType  string // "xlsx" or "text"
	delimiter string
	logger    *internal.Logger
}

// NewDataReader picks the format from the file extension
func NewDataReader(filePath, delimiter string) *DataReader {
	fileType := "text"
	if strings.ToLower(filepath.Ext(filePath)) == ".xlsx" {
		fileType = "xlsx"
	}
	return &DataReader{
		filePath:  filePath,
		fileType:  fileType,
		delimiter: delimiter,
		logger:    internal.DefaultLogger.With("DataReader"),
	}
}

// Path returns the source file path
func (r *DataReader) Path() string {
	return r.filePath
}

// ReadTable reads and normalizes the dataset
func (r *DataReader) ReadTable() (*tabular.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("dataset file %s", r.filePath))
	}

	start := time.Now()
	var (
		table *tabular.Table
		err   error
	)
	switch r.fileType {
	case "xlsx":
		table, err = r.readExcel()
	default:
		table, err = r.readText()
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("%s read in %.2fms (%d columns, %d rows)",
		r.filePath, float64(time.Since(start).Nanoseconds())/1e6, len(table.Headers), len(table.Rows))
	return table, nil
}

// ReadText returns the raw file contents for text datasets
func (r *DataReader) ReadText() (string, error) {
	if r.fileType == "xlsx" {
		return "", errors.InvalidInput("xlsx datasets have no text form; use ReadTable")
	}
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", r.filePath)
	}
	return string(data), nil
}

func (r *DataReader) readText() (*tabular.Table, error) {
	text, err := r.ReadText()
	if err != nil {
		return nil, err
	}
	table, err := tabular.Parse(text, r.delimiter)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", r.filePath)
	}
	return table, nil
}

// readExcel reads the first sheet of the workbook
func (r *DataReader) readExcel() (*tabular.Table, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open Excel file %s", r.filePath)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.MalformedInput("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheets[0])
	}

	table, err := tabular.ParseRecords(rows)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse sheet %s", sheets[0])
	}
	return table, nil
}
