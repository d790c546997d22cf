package goalseek

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"statkit/adapters/memory"
	"statkit/domain/core"
)

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) SetValue(cell string, v float64) error {
	return m.Called(cell, v).Error(0)
}

func (m *mockOracle) Recalc() error {
	return m.Called().Error(0)
}

func (m *mockOracle) Value(cell string) (float64, error) {
	args := m.Called(cell)
	return args.Get(0).(float64), args.Error(1)
}

func TestSeekCellWritesRoot(t *testing.T) {
	oracle := memory.NewFuncOracle()
	require.NoError(t, oracle.SetValue("A1", 1))
	oracle.Define("B1", func(get func(string) float64) (float64, error) {
		return 3*get("A1") + 4, nil
	})

	res, err := SeekCell(context.Background(), oracle, CellRequest{
		Target: "B1", Goal: 25, Changing: "A1", XMin: -100, XMax: 100,
	})
	require.NoError(t, err)
	assert.InDelta(t, 7, res.Root, 1e-6)
	assert.InDelta(t, 25, res.Value, 1e-6)

	a1, err := oracle.Value("$A$1")
	require.NoError(t, err)
	assert.InDelta(t, 7, a1, 1e-6)
}

func TestSeekCellRestoresOnFailure(t *testing.T) {
	m := &mockOracle{}
	m.On("Value", "A1").Return(3.0, nil)
	m.On("Value", "B1").Return(0.0, stderrors.New("#DIV/0!"))
	m.On("SetValue", "A1", mock.Anything).Return(nil)
	m.On("Recalc").Return(nil)

	_, err := SeekCell(context.Background(), m, CellRequest{
		Target: "B1", Goal: 1, Changing: "A1", XMin: 0, XMax: 10,
	})
	require.Error(t, err)
	assert.True(t, core.IsRootFindingError(err))

	var last mock.Call
	for _, c := range m.Calls {
		if c.Method == "SetValue" {
			last = c
		}
	}
	require.Equal(t, "SetValue", last.Method)
	assert.Equal(t, 3.0, last.Arguments.Get(1))
	m.AssertCalled(t, "Recalc")
}

func TestSeekCellRejectsSelfReference(t *testing.T) {
	_, err := SeekCell(context.Background(), memory.NewFuncOracle(), CellRequest{Target: "A1", Changing: "a1"})
	assert.Error(t, err)
}
