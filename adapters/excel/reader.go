// Package excel reads analysis input from xlsx and CSV files and writes tool
// output and goal-seek changes back into xlsx workbooks.
package excel

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"statkit/adapters/memory"
	"statkit/domain/dataset"
	"statkit/internal"
	"statkit/internal/errors"
	"statkit/ports"
)

var logger = internal.DefaultLogger.With("excel")

// Source is a cell source with a sheet used for unqualified references
type Source interface {
	ports.CellSource
	DefaultSheet() string
}

// Workbook is a CellSource over an open excelize file. Cells holding
// formulas report their cached results.
type Workbook struct {
	File *excelize.File
	path string
}

// NewWorkbook wraps an existing excelize file
func NewWorkbook(f *excelize.File) *Workbook { return &Workbook{File: f} }

// OpenWorkbook opens an xlsx file
func OpenWorkbook(path string) (*Workbook, error) {
	start := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open workbook %s", path)
	}
	logger.Debug("opened %s in %s", path, time.Since(start))
	return &Workbook{File: f, path: path}, nil
}

// Open reads path as CSV when its extension is .csv and as xlsx otherwise
func Open(path string, cfg Config) (Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "input file %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadCSV(path, cfg)
	}
	return OpenWorkbook(path)
}

// ReadCSV loads a CSV file into a single-sheet in-memory workbook
func ReadCSV(path string, cfg Config) (*memory.Workbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open CSV file %s", path)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read CSV file %s", path)
	}
	sheet := cfg.CSVSheet
	if sheet == "" {
		sheet = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	logger.Debug("read %s (%d rows) as sheet %s", path, len(records), sheet)
	return memory.FromStrings(sheet, records), nil
}

// DefaultSheet is the active sheet of the workbook
func (w *Workbook) DefaultSheet() string {
	return w.File.GetSheetName(w.File.GetActiveSheetIndex())
}

// Cell implements ports.CellSource
func (w *Workbook) Cell(sheet string, col, row int) dataset.Cell {
	if sheet == "" {
		sheet = w.DefaultSheet()
	}
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return dataset.Cell{Kind: dataset.CellError, Text: "#REF!"}
	}
	typ, err := w.File.GetCellType(sheet, name)
	if err != nil {
		return dataset.Cell{Kind: dataset.CellError, Text: "#REF!"}
	}
	value, err := w.File.GetCellValue(sheet, name, excelize.Options{RawCellValue: true})
	if err != nil {
		return dataset.Cell{Kind: dataset.CellError, Text: "#VALUE!"}
	}
	switch typ {
	case excelize.CellTypeBool:
		return dataset.Cell{Kind: dataset.CellBool, Text: value}
	case excelize.CellTypeError:
		return dataset.Cell{Kind: dataset.CellError, Text: value}
	case excelize.CellTypeInlineString, excelize.CellTypeSharedString:
		if value == "" {
			return dataset.Cell{}
		}
		return dataset.TextCell(value)
	}
	return memory.ParseCell(value)
}

// Save writes the workbook back to the file it was opened from, or to path
// when given
func (w *Workbook) Save(path string) error {
	if path == "" {
		path = w.path
	}
	if path == "" {
		return errors.InvalidInput("workbook has no file name")
	}
	if err := w.File.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}
	return nil
}

// Close releases the underlying file
func (w *Workbook) Close() error { return w.File.Close() }

// Import copies the default sheet of an in-memory workbook into a new
// excelize file under the same name, so formulas written next to it resolve.
func Import(src *memory.Workbook) (*Workbook, error) {
	name := src.DefaultSheet()
	sheet, ok := src.Sheet(name)
	if !ok {
		return nil, errors.NotFound("sheet " + name)
	}
	f := excelize.NewFile()
	if name != "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "failed to name sheet %s", name)
		}
	}

	cols, rows := sheet.Bounds()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if err := setCell(f, name, col, row, sheet.Cell(col, row)); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
	}
	return NewWorkbook(f), nil
}

func setCell(f *excelize.File, sheet string, col, row int, c dataset.Cell) error {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return errors.WithCode(errors.CodeInvalidField, err)
	}
	switch c.Kind {
	case dataset.CellEmpty:
		return nil
	case dataset.CellNumber:
		err = f.SetCellFloat(sheet, name, c.Number, -1, 64)
	case dataset.CellBool:
		err = f.SetCellBool(sheet, name, strings.EqualFold(c.Text, "true") || c.Text == "1")
	default:
		err = f.SetCellStr(sheet, name, c.Text)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to write %s", name)
	}
	return nil
}
