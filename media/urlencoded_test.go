package media_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstachio/ezkv/media"
)

func TestURLEncoded_Parse(t *testing.T) {
	got := parseAll(t, media.URLEncoded{}, "a=1&b=hello+world&=skipped&c=%2Fpath")

	assert.Equal(t, []media.Pair{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "hello world"},
		{Key: "c", Value: "/path"},
	}, got)
}

func TestURLEncoded_Format(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, media.URLEncoded{}.Format(&sb, []media.Pair{
		{Key: "a", Value: "1"},
		{Key: "b c", Value: "d/e"},
	}))

	assert.Equal(t, "a=1&b+c=d%2Fe", sb.String())
}

func TestRegistry_Lookup(t *testing.T) {
	r := media.NewRegistry()

	p, f, ok := r.ByExtension(".properties")
	require.True(t, ok)
	assert.IsType(t, media.Properties{}, p)
	assert.IsType(t, media.Properties{}, f)

	_, _, ok = r.ByName("text/x-properties")
	assert.True(t, ok)

	_, _, ok = r.ByURI("https://example.com/app.urlencoded")
	assert.True(t, ok)

	_, _, ok = r.ByExtension("unknown")
	assert.False(t, ok)
}
