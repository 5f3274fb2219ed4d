package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadling/wadling/internal/lexicon"
	"github.com/wadling/wadling/internal/openapi"
)

const lexiconYAML = `/:
  method: get
  doc: Home
  id: index
  params:
    q:
      type: string
      required: false
`

const timelineJSON = `{
  "lexicon": 1,
  "id": "app.bsky.feed.getTimeline",
  "defs": {
    "main": {
      "type": "query",
      "parameters": {"type": "params", "properties": {"limit": {"type": "integer"}}}
    }
  }
}`

const helloOpenAPI = `openapi: 3.0.0
info:
  title: Hello
  version: "1"
paths:
  /hello:
    get:
      operationId: sayHello
      tags: [greet]
      parameters:
        - in: query
          name: name
          schema:
            type: string
      responses:
        "200":
          description: ok
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_AutoDetectsLexicon(t *testing.T) {
	p := writeFile(t, t.TempDir(), "lexicon.yaml", lexiconYAML)

	v, err := Load(context.Background(), p, Options{})
	require.NoError(t, err)
	res, err := lexicon.Parse(v)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "/", res[0].Path)
	assert.Equal(t, lexicon.GET, res[0].Method)
}

func TestLoad_AutoDetectsATProtoFileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "getTimeline.json", timelineJSON)

	v, err := Load(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, []any{"/xrpc/app.bsky.feed.getTimeline"}, v.(lexicon.Map).Keys())

	v, err = Load(context.Background(), dir, Options{Format: Auto})
	require.NoError(t, err)
	assert.Len(t, v.(lexicon.Map), 1)
}

func TestLoad_AutoDetectsOpenAPI(t *testing.T) {
	p := writeFile(t, t.TempDir(), "openapi.yaml", helloOpenAPI)

	v, err := Load(context.Background(), p, Options{})
	require.NoError(t, err)
	res, err := lexicon.Parse(v)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "sayHello", res[0].ID)

	v, err = Load(context.Background(), p, Options{Format: OpenAPI, ExcludeTags: []string{"greet"}})
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestLoad_ExplicitLexiconKeepsNonMapping(t *testing.T) {
	p := writeFile(t, t.TempDir(), "list.yaml", "- a\n- b\n")

	v, err := Load(context.Background(), p, Options{Format: Lexicon})
	require.NoError(t, err)
	_, err = lexicon.Parse(v)
	assert.ErrorIs(t, err, lexicon.ErrInvalidArgument)
	assert.EqualError(t, err, "A resource dictionary is expected")
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(context.Background(), " ", Options{})
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, openapi.InputError, se.Code)

	_, err = Load(context.Background(), filepath.Join(dir, "missing.yaml"), Options{})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, openapi.InputError, se.Code)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(context.Background(), dir, Options{Format: Lexicon})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, openapi.InputError, se.Code)

	_, err = Load(context.Background(), "https://example.com/openapi.yaml", Options{Format: ATProto})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, openapi.InputError, se.Code)

	p := writeFile(t, dir, "broken.json", `{"a": `)
	_, err = Load(context.Background(), p, Options{})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, openapi.ParseError, se.Code)

	bad := writeFile(t, dir, "bad.yaml", "openapi: 3.0.0\npaths: {}\n")
	_, err = Load(context.Background(), bad, Options{})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, OpenAPI, se.Format)
	var le *openapi.LoadError
	assert.True(t, errors.As(err, &le))
}

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want Format
	}{
		{"nil", nil, Lexicon},
		{"list", []any{"a"}, Lexicon},
		{"atproto", lexicon.Map{{Key: "lexicon", Value: 1}, {Key: "defs", Value: lexicon.Map{}}}, ATProto},
		{"openapi", lexicon.Map{{Key: "openapi", Value: "3.0.3"}}, OpenAPI},
		{"swagger", lexicon.Map{{Key: "swagger", Value: "2.0"}}, OpenAPI},
		{"resource named openapi", lexicon.Map{{Key: "openapi", Value: lexicon.Map{{Key: "method", Value: "GET"}}}}, Lexicon},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Detect(c.in))
		})
	}
}
