package ezkv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstachio/ezkv"
)

func TestIsResourceKey(t *testing.T) {
	assert.True(t, ezkv.IsResourceKey("_load_db"))
	assert.True(t, ezkv.IsResourceKey("_flags_db"))
	assert.True(t, ezkv.IsResourceKey("_flag_db"))
	assert.True(t, ezkv.IsResourceKey("_mediaType_db"))
	assert.True(t, ezkv.IsResourceKey("_mime_db"))
	assert.True(t, ezkv.IsResourceKey("_param_db_host"))
	assert.True(t, ezkv.IsResourceKey("_p_db_host"))
	assert.True(t, ezkv.IsResourceKey("_filter_db_grep"))
	assert.False(t, ezkv.IsResourceKey("db.host"))
	assert.False(t, ezkv.IsResourceKey("_unknown_db"))
	assert.False(t, ezkv.IsResourceKey("_load_"))
}

func TestNormalizeResource_MergesQueryDSL(t *testing.T) {
	r := ezkv.NewResource("file:/etc/app.properties?_flags=NO_REQUIRE&_mime=text%2Fx-properties&_p_enc=utf8&keep=1")

	require.NoError(t, ezkv.NormalizeResource(r))

	assert.True(t, r.Flags.Has(ezkv.NoRequire))
	assert.Equal(t, "text/x-properties", r.MediaType)

	v, ok := r.Parameters.Get("enc")
	require.True(t, ok)
	assert.Equal(t, "utf8", v)

	assert.Contains(t, r.URI, "keep=1")
	assert.NotContains(t, r.URI, "_flags")
	assert.NotContains(t, r.URI, "_p_enc")

	// calling twice is a no-op
	before := r.URI
	require.NoError(t, ezkv.NormalizeResource(r))
	assert.Equal(t, before, r.URI)
}

func TestExtractChildren_OrderAndFields(t *testing.T) {
	parent := ezkv.NewResource("mem:/root")

	kvs := ezkv.Of(
		ezkv.NewKeyValue("_load_b", "mem:/b", ezkv.Meta{}),
		ezkv.NewKeyValue("_load_a", "mem:/a", ezkv.Meta{}),
		ezkv.NewKeyValue("_flags_a", "NO_ADD", ezkv.Meta{}),
		ezkv.NewKeyValue("_param_a_x", "1", ezkv.Meta{}),
		ezkv.NewKeyValue("plain", "value", ezkv.Meta{}),
	)

	values, err := kvs.Collect()
	require.NoError(t, err)

	children, err := ezkv.ExtractChildren(values, parent)
	require.NoError(t, err)
	require.Len(t, children, 2)

	assert.Equal(t, "b", children[0].Name)
	assert.Equal(t, "mem:/b", children[0].URI)
	assert.Equal(t, "a", children[1].Name)
	assert.Equal(t, "mem:/a", children[1].URI)
	assert.True(t, children[1].Flags.Has(ezkv.NoAdd))

	x, ok := children[1].Parameters.Get("x")
	require.True(t, ok)
	assert.Equal(t, "1", x)
}

func TestExtractChildren_OrphanMetaKeyErrors(t *testing.T) {
	parent := ezkv.NewResource("mem:/root")

	kvs := ezkv.Of(
		ezkv.NewKeyValue("_flags_missing", "NO_ADD", ezkv.Meta{}),
	)

	values, err := kvs.Collect()
	require.NoError(t, err)

	_, err = ezkv.ExtractChildren(values, parent)
	require.Error(t, err)
}

func TestExtractChildren_DuplicateLoadErrors(t *testing.T) {
	parent := ezkv.NewResource("mem:/root")

	kvs := ezkv.Of(
		ezkv.NewKeyValue("_load_a", "mem:/a", ezkv.Meta{}),
		ezkv.NewKeyValue("_load_a", "mem:/a2", ezkv.Meta{}),
	)

	values, err := kvs.Collect()
	require.NoError(t, err)

	_, err = ezkv.ExtractChildren(values, parent)
	require.Error(t, err)
}

func TestStripResourceKeys(t *testing.T) {
	kvs := []ezkv.KeyValue{
		ezkv.NewKeyValue("_load_a", "mem:/a", ezkv.Meta{}),
		ezkv.NewKeyValue("real.key", "v", ezkv.Meta{}),
	}

	out := ezkv.StripResourceKeys(kvs)
	require.Len(t, out, 1)
	assert.Equal(t, "real.key", out[0].Key)
}
