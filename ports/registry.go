package ports

import (
	"statkit/domain/formula"
)

// FunctionRegistry resolves spreadsheet function descriptors by name
type FunctionRegistry interface {
	Lookup(name string) (*formula.Func, error)
}
