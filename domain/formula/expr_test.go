package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statkit/domain/dataset"
)

func TestRenderCall(t *testing.T) {
	reg := DefaultRegistry()
	avg, err := reg.Lookup("average")
	require.NoError(t, err)
	stdev, err := reg.Lookup("STDEV")
	require.NoError(t, err)
	sqrt, _ := reg.Lookup("SQRT")
	count, _ := reg.Lookup("COUNT")

	col := RefOf(dataset.Range{Sheet: "Sheet1", StartCol: 1, StartRow: 1, EndCol: 1, EndRow: 10})
	se := Div(Apply(stdev, col), Apply(sqrt, Apply(count, col)))

	assert.Equal(t, "AVERAGE(Sheet1!$B$2:$B$11)", Apply(avg, col).String())
	assert.Equal(t, "STDEV(Sheet1!$B$2:$B$11)/SQRT(COUNT(Sheet1!$B$2:$B$11))", se.String())
	assert.Equal(t, "(1-2)*3", Mul(Sub(Number(1), Number(2)), Number(3)).String())
	assert.Equal(t, `"say ""hi"""`, Str(`say "hi"`).String())
}

func TestRegistryLookup(t *testing.T) {
	reg := DefaultRegistry()
	_, err := reg.Lookup("NOSUCH")
	assert.Error(t, err)

	f, err := reg.Lookup("TDIST")
	require.NoError(t, err)
	assert.True(t, f.Accepts(3))
	assert.False(t, f.Accepts(2))

	avg, _ := reg.Lookup("AVERAGE")
	assert.True(t, avg.Accepts(30))
}

func TestResolverKeepsFirstError(t *testing.T) {
	res := NewResolver(NewRegistry(Func{"SUM", 1, -1}))
	assert.Equal(t, "SUM", res.Get("sum").Name)
	assert.NoError(t, res.Err())
	res.Get("FOO")
	res.Get("BAR")
	require.Error(t, res.Err())
	assert.Contains(t, res.Err().Error(), "FOO")
}
