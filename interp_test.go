package ezkv_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstachio/ezkv"
)

func TestExpand_Literal(t *testing.T) {
	got, err := ezkv.Expand("price: $$5", ezkv.Empty())
	require.NoError(t, err)
	assert.Equal(t, "price: $5", got)
}

func TestExpand_Basic(t *testing.T) {
	vars := ezkv.FromMap(map[string]string{"user.name": "Barf"})

	got, err := ezkv.Expand("Hello ${user.name}", vars)
	require.NoError(t, err)
	assert.Equal(t, "Hello Barf", got)
}

func TestExpand_Default(t *testing.T) {
	got, err := ezkv.Expand("${port:-8080}", ezkv.Empty())
	require.NoError(t, err)
	assert.Equal(t, "8080", got)
}

func TestExpand_DefaultRecursivelyExpanded(t *testing.T) {
	vars := ezkv.FromMap(map[string]string{"fallback.port": "9090"})

	got, err := ezkv.Expand("${port:-${fallback.port}}", vars)
	require.NoError(t, err)
	assert.Equal(t, "9090", got)
}

func TestExpand_NestedName(t *testing.T) {
	vars := ezkv.FromMap(map[string]string{
		"env":       "prod",
		"port.prod": "443",
	})

	got, err := ezkv.Expand("${port.${env}}", vars)
	require.NoError(t, err)
	assert.Equal(t, "443", got)
}

func TestExpand_MissingVariable(t *testing.T) {
	_, err := ezkv.Expand("${nope}", ezkv.Empty())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ezkv.ErrMissingVariable))
}

func TestExpand_InterpolationLimit(t *testing.T) {
	// Nest "${missing:-...}" defaults past the limit; each default is
	// expanded one level deeper than the last, which is what trips the cap.
	value := "leaf"
	for i := 0; i < ezkv.MaxInterpolationDepth+5; i++ {
		value = "${missing:-" + value + "}"
	}

	_, err := ezkv.Expand(value, ezkv.Empty())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ezkv.ErrInterpolationLimit))
}

func TestExpand_Idempotent(t *testing.T) {
	vars := ezkv.FromMap(map[string]string{"name": "World"})

	once, err := ezkv.Expand("Hello ${name}", vars)
	require.NoError(t, err)

	twice, err := ezkv.Expand(once, vars)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestExpand_VerbatimText(t *testing.T) {
	got, err := ezkv.Expand("no variables here", ezkv.Empty())
	require.NoError(t, err)
	assert.Equal(t, "no variables here", got)
}
