package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"statkit/adapters/excel"
	"statkit/adapters/memory"
	"statkit/internal/analysis"
	"statkit/internal/errors"
	"statkit/internal/fourier"
	"statkit/internal/goalseek"
)

const defaultDataSheet = "Sheet1"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tools": analysis.Tools()})
}

func (s *Server) handleRunTool(w http.ResponseWriter, r *http.Request) {
	var req ToolRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	req.Tool = chi.URLParam(r, "name")

	sheet := req.DataSheet
	if sheet == "" {
		sheet = defaultDataSheet
	}
	if req.Sheet == "" {
		req.Sheet = sheet
	}
	src := memory.FromRows(sheet, req.Data)

	tool, err := analysis.Build(req.Request.WithDefaults(s.cfg.Defaults()), src)
	if err != nil {
		s.writeError(w, err)
		return
	}
	grid := memory.NewGrid()
	rep, err := s.engine.Run(r.Context(), tool, grid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ToolResponse{Report: rep, Rows: grid.Rows(), Cells: grid.Cells()})
}

func (s *Server) handleFFT(w http.ResponseWriter, r *http.Request) {
	var req FFTRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	out, err := fourier.TransformComplex(req.Real, req.Imag, req.Inverse)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := FFTResponse{Real: make([]float64, len(out)), Imag: make([]float64, len(out))}
	for i, c := range out {
		resp.Real[i], resp.Imag[i] = real(c), imag(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGoalSeek(w http.ResponseWriter, r *http.Request) {
	var req GoalSeekRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.Cells) == 0 {
		s.writeError(w, errors.InvalidInput("cells are required"))
		return
	}

	f, err := buildSheet(req.Cells)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer f.Close()

	cr := req.CellRequest
	if cr.XMin == 0 && cr.XMax == 0 {
		cr.XMin, cr.XMax = s.cfg.GoalSeek.XMin, s.cfg.GoalSeek.XMax
	}
	if cr.Precision == 0 {
		cr.Precision = s.cfg.GoalSeek.Precision
	}
	if cr.Seed == 0 {
		cr.Seed = s.cfg.GoalSeek.Seed
	}

	res, err := goalseek.SeekCell(r.Context(), excel.NewOracle(f, defaultDataSheet), cr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// buildSheet writes cells into a fresh workbook. Names are applied in
// sorted order so the result does not depend on map iteration.
func buildSheet(cells map[string]any) (*excelize.File, error) {
	f := excelize.NewFile()
	names := make([]string, 0, len(cells))
	for name := range cells {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var err error
		switch v := cells[name].(type) {
		case float64:
			err = f.SetCellValue(defaultDataSheet, name, v)
		case string:
			if strings.HasPrefix(v, "=") {
				err = f.SetCellFormula(defaultDataSheet, name, strings.TrimPrefix(v, "="))
			} else {
				err = f.SetCellStr(defaultDataSheet, name, v)
			}
		case bool:
			err = f.SetCellBool(defaultDataSheet, name, v)
		case nil:
		default:
			err = fmt.Errorf("unsupported value %v", v)
		}
		if err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "cell %s", name)
		}
	}
	return f, nil
}
