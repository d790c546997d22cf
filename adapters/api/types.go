package api

import (
	"statkit/adapters/memory"
	"statkit/internal/analysis"
	"statkit/internal/goalseek"
)

// ToolRequest runs one analysis tool over inline data. Tool in the embedded
// request is taken from the URL.
type ToolRequest struct {
	analysis.Request
	// Data holds the rows of the input sheet
	Data [][]any `json:"data"`
	// DataSheet names the input sheet; unqualified ranges resolve to it
	DataSheet string `json:"data_sheet,omitempty"`
}

// ToolResponse carries the output grid of a tool run
type ToolResponse struct {
	Report *analysis.Report     `json:"report"`
	Rows   [][]string           `json:"rows"`
	Cells  [][]memory.GridCell `json:"cells,omitempty"`
}

// FFTRequest is a complex sequence given as parts
type FFTRequest struct {
	Real    []float64 `json:"real"`
	Imag    []float64 `json:"imag,omitempty"`
	Inverse bool      `json:"inverse,omitempty"`
}

// FFTResponse is the transformed sequence
type FFTResponse struct {
	Real []float64 `json:"real"`
	Imag []float64 `json:"imag"`
}

// GoalSeekRequest seeks over a small workbook. Cells maps A1 names to
// numbers, or to strings starting with "=" for formulas.
type GoalSeekRequest struct {
	goalseek.CellRequest
	Cells map[string]any `json:"cells"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
