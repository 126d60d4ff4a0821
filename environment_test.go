package ezkv_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstachio/ezkv"
)

func TestClasspath_OpenSearchesRootsInOrder(t *testing.T) {
	first := fstest.MapFS{"app.properties": &fstest.MapFile{Data: []byte("a=1\n")}}
	second := fstest.MapFS{"app.properties": &fstest.MapFile{Data: []byte("a=2\n")}, "only-in-second.properties": &fstest.MapFile{Data: []byte("b=2\n")}}

	cp := ezkv.NewClasspath(first, second)

	f, err := cp.Open("app.properties")
	require.NoError(t, err)
	defer f.Close()

	f2, err := cp.Open("only-in-second.properties")
	require.NoError(t, err)
	defer f2.Close()

	_, err = cp.Open("nope.properties")
	require.Error(t, err)
}

func TestClasspath_EnumerateDeduplicatesAcrossRoots(t *testing.T) {
	first := fstest.MapFS{"conf/a.properties": &fstest.MapFile{Data: []byte("a=1\n")}}
	second := fstest.MapFS{"conf/a.properties": &fstest.MapFile{Data: []byte("a=2\n")}, "conf/b.properties": &fstest.MapFile{Data: []byte("b=1\n")}}

	cp := ezkv.NewClasspath(first, second)

	matches, err := cp.Enumerate("conf/*.properties")
	require.NoError(t, err)
	assert.Equal(t, []string{"conf/a.properties", "conf/b.properties"}, matches)
}

func TestNoopLogger_DoesNothing(t *testing.T) {
	var log ezkv.Logger = ezkv.NoopLogger{}

	log.Load(ezkv.NewResource("mem:/x"))
	log.Loaded(ezkv.NewResource("mem:/x"))
	log.Missing(ezkv.NewResource("mem:/x"), ezkv.ErrResourceNotFound)
	log.Warn("hello")
	log.Fatal(ezkv.ErrResourceNotFound)
}
