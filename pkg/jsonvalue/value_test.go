package jsonvalue_test

import (
	"encoding/json"
	"testing"

	"github.com/samvad-hq/samvad-invoker/pkg/jsonvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDecode_NestedDocument(t *testing.T) {
	t.Parallel()

	v, err := jsonvalue.Decode([]byte(`{"json":{"query":"Hello world"},"args":{},"n":[1,2.5,true,null]}`))
	require.NoError(t, err)
	require.Equal(t, jsonvalue.KindObject, v.Kind())
	assert.Equal(t, []string{"args", "json", "n"}, v.Keys())

	body, ok := v.Get("json")
	require.True(t, ok)
	query, ok := body.Get("query")
	require.True(t, ok)
	s, ok := query.AsString()
	require.True(t, ok)
	assert.Equal(t, "Hello world", s)

	list, ok := v.Get("n")
	require.True(t, ok)
	require.Equal(t, 4, list.Len())

	second, _ := list.Index(1)
	f, ok := second.AsFloat()
	require.True(t, ok)
	assert.InDelta(t, 2.5, f, 0)

	third, _ := list.Index(2)
	b, ok := third.AsBool()
	require.True(t, ok)
	assert.True(t, b)

	last, _ := list.Index(3)
	assert.True(t, last.IsNull())

	_, ok = list.Index(4)
	assert.False(t, ok)
}

func TestDecode_Scalars(t *testing.T) {
	t.Parallel()

	cases := map[string]jsonvalue.Kind{
		`"text"`: jsonvalue.KindString,
		`42`:     jsonvalue.KindNumber,
		`false`:  jsonvalue.KindBool,
		`null`:   jsonvalue.KindNull,
		`[]`:     jsonvalue.KindArray,
	}
	for input, want := range cases {
		v, err := jsonvalue.Decode([]byte(input))
		require.NoError(t, err, input)
		assert.Equal(t, want, v.Kind(), input)
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	_, err := jsonvalue.Decode(nil)
	require.ErrorIs(t, err, jsonvalue.ErrEmpty)

	_, err = jsonvalue.Decode([]byte("   \n"))
	require.ErrorIs(t, err, jsonvalue.ErrEmpty)

	_, err = jsonvalue.Decode([]byte(`{"a":1} {"b":2}`))
	require.ErrorIs(t, err, jsonvalue.ErrTrailingData)

	_, err = jsonvalue.Decode([]byte(`<html><title>Oops</title></html>`))
	require.Error(t, err)

	_, err = jsonvalue.Decode([]byte(`{"a":`))
	require.Error(t, err)
}

func TestDecode_PreservesLargeNumbers(t *testing.T) {
	t.Parallel()

	v, err := jsonvalue.Decode([]byte(`{"id":12345678901234567890123}`))
	require.NoError(t, err)

	id, _ := v.Get("id")
	n, ok := id.AsNumber()
	require.True(t, ok)
	assert.Equal(t, "12345678901234567890123", n.String())
	assert.JSONEq(t, `{"id":12345678901234567890123}`, v.String())
}

func TestEqual(t *testing.T) {
	t.Parallel()

	a := jsonvalue.MustFromAny(map[string]any{"q": "x", "n": 1, "l": []any{true, nil}})
	b, err := jsonvalue.Decode([]byte(`{"l":[true,null],"n":1.0,"q":"x"}`))
	require.NoError(t, err)
	assert.True(t, jsonvalue.Equal(a, b))

	c, err := jsonvalue.Decode([]byte(`{"l":[true,null],"n":2,"q":"x"}`))
	require.NoError(t, err)
	assert.False(t, jsonvalue.Equal(a, c))

	assert.False(t, jsonvalue.Equal(jsonvalue.String("1"), jsonvalue.Int(1)))
	assert.True(t, jsonvalue.Equal(jsonvalue.Number("1e3"), jsonvalue.Int(1000)))
	assert.False(t, jsonvalue.Equal(jsonvalue.Array(jsonvalue.Int(1)), jsonvalue.Array()))
}

func TestFromAny_StructsAndInvalidInput(t *testing.T) {
	t.Parallel()

	type payload struct {
		Query string `json:"query"`
	}

	v, err := jsonvalue.FromAny(payload{Query: "Hello world"})
	require.NoError(t, err)
	assert.Equal(t, `{"query":"Hello world"}`, v.String())

	_, err = jsonvalue.FromAny(json.Number("abc"))
	require.Error(t, err)

	_, err = jsonvalue.FromAny(map[string]any{"bad": make(chan int)})
	require.Error(t, err)
}

func TestAny_RoundTrip(t *testing.T) {
	t.Parallel()

	in := map[string]any{"query": "Hello world", "count": json.Number("3")}
	v := jsonvalue.MustFromAny(in)
	assert.Equal(t, in, v.Any())
}

func TestJSONMarshalling(t *testing.T) {
	t.Parallel()

	var wrapper struct {
		Value jsonvalue.Value `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"value":{"b":[1,"two"],"a":null}}`), &wrapper))
	assert.Equal(t, jsonvalue.KindObject, wrapper.Value.Kind())

	out, err := json.Marshal(wrapper)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":{"a":null,"b":[1,"two"]}}`, string(out))
}

func TestString_DoesNotEscapeHTML(t *testing.T) {
	t.Parallel()

	v, err := jsonvalue.Decode([]byte(`{"url":"https://httpbin.org/anything?a=<b>&c=1"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"url":"https://httpbin.org/anything?a=<b>&c=1"}`, v.String())
}

func TestMarshalYAML_KeepsTypes(t *testing.T) {
	t.Parallel()

	v, err := jsonvalue.Decode([]byte(`{"count":3,"ratio":0.5,"flag":true,"none":null,"text":"42"}`))
	require.NoError(t, err)

	out, err := yaml.Marshal(v)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, 3, back["count"])
	assert.InDelta(t, 0.5, back["ratio"], 0)
	assert.Equal(t, true, back["flag"])
	assert.Nil(t, back["none"])
	assert.Equal(t, "42", back["text"])
}
