// Package batch runs many analysis requests against one workbook.
package batch

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"statkit/internal/analysis"
	"statkit/internal/errors"
)

// File is a job file: one input workbook, one output workbook and the
// requests to run between them
type File struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Jobs   []Job  `yaml:"jobs"`
}

// Job places one request's output at Origin on OutputSheet
type Job struct {
	Name        string `yaml:"name"`
	OutputSheet string `yaml:"output_sheet,omitempty"`
	Origin      string `yaml:"origin,omitempty"`

	analysis.Request `yaml:",inline"`
}

// Load reads a job file
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read job file %s", path)
	}
	return Parse(raw)
}

// Parse decodes a job file and fills unnamed jobs and empty origins
func Parse(raw []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "malformed job file")
	}
	if len(f.Jobs) == 0 {
		return nil, errors.InvalidInput("job file lists no jobs")
	}
	for i := range f.Jobs {
		j := &f.Jobs[i]
		if j.Tool == "" {
			return nil, errors.Newf(errors.CodeInvalidInput, "job %d names no tool", i+1)
		}
		if j.Name == "" {
			j.Name = j.Tool
		}
		if j.Origin == "" {
			j.Origin = "A1"
		}
	}
	return &f, nil
}
