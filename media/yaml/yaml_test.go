package yaml_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstachio/ezkv/media"
	ezkvyaml "github.com/jstachio/ezkv/media/yaml"
)

func TestFormat_Parse_Flattening(t *testing.T) {
	doc := `
app:
  name: demo
  ports:
    - 8080
    - 9090
`

	var got []media.Pair

	err := ezkvyaml.Format{}.Parse(strings.NewReader(doc), func(p media.Pair) error {
		got = append(got, p)

		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []media.Pair{
		{Key: "app.name", Value: "demo"},
		{Key: "app.ports[0]", Value: "8080"},
		{Key: "app.ports[1]", Value: "9090"},
	}, got)
}

func TestFormat_Format_Nesting(t *testing.T) {
	pairs := []media.Pair{
		{Key: "app.name", Value: "demo"},
		{Key: "app.ports[0]", Value: "8080"},
	}

	var sb strings.Builder
	require.NoError(t, ezkvyaml.Format{}.Format(&sb, pairs))

	assert.Contains(t, sb.String(), "name: demo")
	assert.Contains(t, sb.String(), "ports:")
}

func TestRegister(t *testing.T) {
	reg := media.NewRegistry()
	ezkvyaml.Register(reg, 0)

	_, _, ok := reg.ByExtension("yaml")
	assert.True(t, ok)

	_, _, ok = reg.ByName(ezkvyaml.MediaType)
	assert.True(t, ok)
}
