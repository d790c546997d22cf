package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"statkit/domain/dataset"
	"statkit/internal/analysis"
	"statkit/internal/goalseek"
	"statkit/ports"
)

func newFile(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWorkbookCellKinds(t *testing.T) {
	f := newFile(t)
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Weight"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", 12.5))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", true))
	require.NoError(t, f.SetCellStr("Sheet1", "A4", "42"))

	wb := NewWorkbook(f)
	assert.Equal(t, "Sheet1", wb.DefaultSheet())
	assert.Equal(t, dataset.TextCell("Weight"), wb.Cell("Sheet1", 0, 0))
	assert.Equal(t, dataset.NumberCell(12.5), wb.Cell("", 0, 1))
	assert.Equal(t, dataset.CellBool, wb.Cell("Sheet1", 0, 2).Kind)
	assert.Equal(t, dataset.CellText, wb.Cell("Sheet1", 0, 3).Kind)
	assert.Equal(t, dataset.CellEmpty, wb.Cell("Sheet1", 5, 5).Kind)
	assert.Equal(t, dataset.CellError, wb.Cell("Nope", 0, 0).Kind)
}

func TestOpenCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trial.csv")
	require.NoError(t, os.WriteFile(path, []byte("dose,response\n1,2.5\n2,\n3,7\n"), 0o644))

	src, err := Open(path, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "trial", src.DefaultSheet())
	assert.Equal(t, dataset.TextCell("response"), src.Cell("trial", 1, 0))
	assert.Equal(t, dataset.NumberCell(7), src.Cell("trial", 1, 3))
	assert.Equal(t, dataset.CellEmpty, src.Cell("", 1, 2).Kind)

	_, err = Open(filepath.Join(t.TempDir(), "absent.xlsx"), DefaultConfig())
	assert.Error(t, err)
}

func TestSinkWritesCellsAndStyles(t *testing.T) {
	f := newFile(t)
	sink, err := NewSink(f, "Out", "B2", DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, sink.Prepare(2, 2))

	sink.SetCellText(0, 0, "Mean")
	sink.SetCellFloat(1, 0, 2.5)
	sink.SetCellNA(0, 1)
	sink.SetItalic(ports.Rect(0, 0, 0, 0))
	sink.SetPercentFormat(ports.Rect(1, 0, 1, 0))
	sink.SetComment(1, 1, "note")
	require.NoError(t, sink.Err())

	v, err := f.GetCellValue("Out", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Mean", v)
	v, err = f.GetCellValue("Out", "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "2.5", v)
	formula, err := f.GetCellFormula("Out", "B3")
	require.NoError(t, err)
	assert.Equal(t, "NA()", formula)

	style, err := f.GetCellStyle("Out", "B2")
	require.NoError(t, err)
	assert.NotZero(t, style)
	comments, err := f.GetComments("Out")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "C3", comments[0].Cell)

	sink.SetCellFloat(2, 0, 1)
	assert.Error(t, sink.Err())
}

func TestSinkRunsAnalysisTool(t *testing.T) {
	f := newFile(t)
	for i, v := range []float64{1, 2, 3, 4, 5} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetCellFloat("Sheet1", cell, v, -1, 64))
	}
	r, err := dataset.ParseRange("A1:A5")
	require.NoError(t, err)

	sink, err := NewSink(f, "Analysis", "A1", DefaultConfig())
	require.NoError(t, err)
	tool := analysis.NewDescriptive(analysis.Input{
		Source: NewWorkbook(f), Ranges: []dataset.Range{r}, ContextSheet: "Sheet1", Formulas: true,
	})
	_, err = analysis.NewEngine(nil).Run(context.Background(), tool, sink)
	require.NoError(t, err)

	formula, err := f.GetCellFormula("Analysis", "B2")
	require.NoError(t, err)
	assert.Equal(t, "AVERAGE(Sheet1!$A$1:$A$5)", formula)
	label, err := f.GetCellValue("Analysis", "A14")
	require.NoError(t, err)
	assert.Equal(t, "Count", label)
}

func TestOracleGoalSeek(t *testing.T) {
	f := newFile(t)
	require.NoError(t, f.SetCellFloat("Sheet1", "A1", 1, -1, 64))
	require.NoError(t, f.SetCellFormula("Sheet1", "B1", "A1*3+4"))

	o := NewOracle(f, "Sheet1")
	v, err := o.Value("$B$1")
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
	assert.Error(t, o.SetValue("B1", 2))

	res, err := goalseek.SeekCell(context.Background(), o, goalseek.CellRequest{
		Target: "B1", Goal: 25, Changing: "A1", XMin: -100, XMax: 100,
	})
	require.NoError(t, err)
	assert.InDelta(t, 7, res.Root, 1e-9)
	assert.InDelta(t, 25, res.Value, 1e-9)
}

func TestImportCopiesCSVSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trial.csv")
	require.NoError(t, os.WriteFile(path, []byte("dose,ok\n1.5,true\n2,false\n"), 0o644))
	src, err := ReadCSV(path, DefaultConfig())
	require.NoError(t, err)

	wb, err := Import(src)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })

	assert.Equal(t, "trial", wb.DefaultSheet())
	assert.Equal(t, dataset.TextCell("dose"), wb.Cell("trial", 0, 0))
	assert.Equal(t, dataset.NumberCell(1.5), wb.Cell("trial", 0, 1))
	assert.Equal(t, dataset.TextCell("false"), wb.Cell("trial", 1, 2))
}
