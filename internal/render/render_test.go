package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/samvad-hq/samvad-invoker/pkg/jsonvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleValue(t *testing.T) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.Decode([]byte(`{"json":{"query":"Hello world"},"url":"https://httpbin.org/anything?a=<b>","n":3}`))
	require.NoError(t, err)
	return v
}

func TestRenderJSONIsIndentedAndUnescaped(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleValue(t), ""))

	want := `{
  "json": {
    "query": "Hello world"
  },
  "n": 3,
  "url": "https://httpbin.org/anything?a=<b>"
}
`
	assert.Equal(t, want, buf.String())
}

func TestRenderCompact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleValue(t), FormatCompact))
	assert.Equal(t, `{"json":{"query":"Hello world"},"n":3,"url":"https://httpbin.org/anything?a=<b>"}`+"\n", buf.String())
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleValue(t), "YAML"))
	assert.Equal(t, "json:\n  query: Hello world\nn: 3\nurl: https://httpbin.org/anything?a=<b>\n", buf.String())
}

func TestRenderErrors(t *testing.T) {
	require.Error(t, Render(&bytes.Buffer{}, jsonvalue.Null(), "xml"))
	require.Error(t, Render(failingWriter{}, jsonvalue.Int(1), FormatJSON))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }
