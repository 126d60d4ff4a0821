package ezkv_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstachio/ezkv"
	"github.com/jstachio/ezkv/media"
)

func kv(key, value string, flags ezkv.KVFlag) ezkv.KeyValue {
	return ezkv.NewKeyValue(key, value, ezkv.Meta{Flags: flags})
}

func TestKeyValues_ToMap_LastWins(t *testing.T) {
	seq := ezkv.Of(
		kv("a", "1", 0),
		kv("b", "2", 0),
		kv("a", "3", 0),
	)

	got, err := seq.ToMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "3", "b": "2"}, got)
}

func TestKeyValues_Last(t *testing.T) {
	seq := ezkv.Of(kv("a", "1", 0), kv("a", "2", 0))

	found, ok, err := seq.Last("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", found.Value())

	_, ok, err = seq.Last("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyValues_Expand_Idempotent(t *testing.T) {
	vars := ezkv.FromMap(map[string]string{"env": "prod"})

	seq := ezkv.Of(
		kv("name", "app-${env}", 0),
		kv("greeting", "hi ${name}", 0),
	).Expand(vars)

	got, err := seq.ToMap()
	require.NoError(t, err)
	assert.Equal(t, "app-prod", got["name"])
	assert.Equal(t, "hi app-prod", got["greeting"])
}

func TestKeyValues_Expand_NoInterpolationUntouched(t *testing.T) {
	vars := ezkv.FromMap(map[string]string{"secret": "hunter2"})

	seq := ezkv.Of(kv("password", "${secret}", ezkv.NoInterpolation)).Expand(vars)

	values, err := seq.Collect()
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "${secret}", values[0].Expanded())
}

func TestKeyValues_Expand_MissingVariableStopsSequence(t *testing.T) {
	seq := ezkv.Of(
		kv("a", "${nope}", 0),
		kv("b", "value", 0),
	).Expand(ezkv.Empty())

	_, err := seq.Collect()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ezkv.ErrMissingVariable))
}

func TestKeyValues_Redact(t *testing.T) {
	seq := ezkv.Of(
		kv("password", "hunter2", ezkv.Sensitive),
		kv("user", "barf", 0),
	).Redact()

	values, err := seq.Collect()
	require.NoError(t, err)
	assert.Equal(t, "REDACTED", values[0].Expanded())
	assert.Equal(t, "hunter2", values[0].Value())
	assert.Equal(t, "barf", values[1].Expanded())
}

func TestKeyValues_Filter(t *testing.T) {
	seq := ezkv.Of(kv("a", "1", 0), kv("b", "2", 0)).
		Filter(func(kv ezkv.KeyValue) bool { return kv.Key == "a" })

	values, err := seq.Collect()
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "a", values[0].Key)
}

func TestKeyValues_FlatMap(t *testing.T) {
	seq := ezkv.Of(kv("a", "1,2", 0)).FlatMap(func(kv ezkv.KeyValue) ezkv.KeyValues {
		return ezkv.Of(
			ezkv.NewKeyValue(kv.Key+"[0]", "1", ezkv.Meta{}),
			ezkv.NewKeyValue(kv.Key+"[1]", "2", ezkv.Meta{}),
		)
	})

	values, err := seq.Collect()
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "a[0]", values[0].Key)
	assert.Equal(t, "a[1]", values[1].Key)
}

func TestKeyValues_Memoize_Replayable(t *testing.T) {
	calls := 0

	src := ezkv.KeyValues(func(yield func(ezkv.KeyValue, error) bool) {
		calls++
		yield(kv("a", "1", 0), nil)
	})

	memo, err := src.Memoize()
	require.NoError(t, err)

	_, err = memo.Collect()
	require.NoError(t, err)
	_, err = memo.Collect()
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestKeyValues_Format(t *testing.T) {
	seq := ezkv.Of(kv("a", "1", 0), kv("password", "secret", ezkv.Sensitive))

	var buf bytes.Buffer
	err := seq.Format(&buf, media.Properties{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "a=1")
	assert.Contains(t, out, "password=REDACTED")
	assert.NotContains(t, out, "secret")
}

func TestFromPairs(t *testing.T) {
	pairs := []media.Pair{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}

	seq := ezkv.FromPairs(pairs, ezkv.Meta{Source: ezkv.Source{URI: "test:///x"}})

	values, err := seq.Collect()
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, 1, values[0].Meta.Source.Index)
	assert.Equal(t, "test:///x", values[0].Meta.Source.URI)
}

func TestFail(t *testing.T) {
	_, err := ezkv.Fail(ezkv.ErrEmpty).Collect()
	assert.True(t, errors.Is(err, ezkv.ErrEmpty))
}
