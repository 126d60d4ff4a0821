package ezkv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstachio/ezkv"
)

func filterKVs(pairs ...[2]string) []ezkv.KeyValue {
	out := make([]ezkv.KeyValue, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, ezkv.NewKeyValue(p[0], p[1], ezkv.Meta{}))
	}

	return out
}

func TestFilterRegistry_Grep(t *testing.T) {
	reg := ezkv.NewFilterRegistry()

	kvs := filterKVs([2]string{"db.host", "x"}, [2]string{"cache.host", "y"})

	out, err := reg.Apply(ezkv.FilterSpec{ID: "grep_key", Expression: "^db\\."}, kvs, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "db.host", out[0].Key)
}

func TestFilterRegistry_Grep_BadExpression(t *testing.T) {
	reg := ezkv.NewFilterRegistry()

	_, err := reg.Apply(ezkv.FilterSpec{ID: "grep", Expression: "(("}, filterKVs([2]string{"a", "1"}), nil)
	require.Error(t, err)
}

func TestFilterRegistry_SedSubstituteGlobal(t *testing.T) {
	reg := ezkv.NewFilterRegistry()

	kvs := filterKVs([2]string{"greeting", "hello world world"})

	out, err := reg.Apply(ezkv.FilterSpec{ID: "sed", Expression: "s/world/there/g"}, kvs, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "hello there there", out[0].Expanded())
}

func TestFilterRegistry_SedSubstituteFirstOnly(t *testing.T) {
	reg := ezkv.NewFilterRegistry()

	kvs := filterKVs([2]string{"greeting", "a-a-a"})

	out, err := reg.Apply(ezkv.FilterSpec{ID: "sed", Expression: "s/a/b/"}, kvs, nil)
	require.NoError(t, err)
	assert.Equal(t, "b-a-a", out[0].Expanded())
}

func TestFilterRegistry_SedDeleteWithAddress(t *testing.T) {
	reg := ezkv.NewFilterRegistry()

	kvs := filterKVs([2]string{"keep", "v1"}, [2]string{"drop.me", "v2"})

	out, err := reg.Apply(ezkv.FilterSpec{ID: "sed_key", Expression: "/drop\\./d"}, kvs, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "keep", out[0].Key)
}

func TestFilterRegistry_Join(t *testing.T) {
	reg := ezkv.NewFilterRegistry()

	kvs := filterKVs([2]string{"tag", "a"}, [2]string{"other", "x"}, [2]string{"tag", "b"})

	out, err := reg.Apply(ezkv.FilterSpec{ID: "join", Expression: ","}, kvs, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a,b", out[0].Expanded())
	assert.Equal(t, "x", out[1].Expanded())
}

func TestFilterRegistry_UnknownIDIsNoOp(t *testing.T) {
	reg := ezkv.NewFilterRegistry()

	kvs := filterKVs([2]string{"a", "1"})

	out, err := reg.Apply(ezkv.FilterSpec{ID: "nope", Expression: "x"}, kvs, nil)
	require.NoError(t, err)
	assert.Equal(t, kvs, out)
}

func TestFilterRegistry_IgnorePredicateSkipsResourceKeys(t *testing.T) {
	reg := ezkv.NewFilterRegistry()

	kvs := filterKVs([2]string{"_load_child", "mem:/child"}, [2]string{"secret.token", "x"})

	out, err := reg.Apply(ezkv.FilterSpec{ID: "grep_key", Expression: "^nomatch$"}, kvs, ezkv.IsResourceKey)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "_load_child", out[0].Key)
}

func TestFilterRegistry_ApplyChain(t *testing.T) {
	reg := ezkv.NewFilterRegistry()

	kvs := filterKVs([2]string{"a.one", "1"}, [2]string{"b.two", "2"})

	specs := []ezkv.FilterSpec{
		{ID: "grep_key", Expression: "^a\\."},
		{ID: "sed_key", Expression: "s/a/z/"},
	}

	out, err := reg.ApplyChain(specs, kvs, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "z.one", out[0].Key)
}
