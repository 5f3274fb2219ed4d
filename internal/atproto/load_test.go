package atproto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadling/wadling/internal/lexicon"
)

const getTimeline = `{
  "lexicon": 1,
  "id": "app.bsky.feed.getTimeline",
  "defs": {
    "main": {
      "type": "query",
      "description": "Get a view of the requesting account's home timeline.",
      "parameters": {
        "type": "params",
        "required": ["algorithm"],
        "properties": {
          "algorithm": {"type": "string"},
          "limit": {"type": "integer", "minimum": 1, "maximum": 100, "default": 50},
          "cursor": {"type": "string"},
          "uris": {"type": "array", "items": {"type": "string", "format": "at-uri"}},
          "includePins": {"type": "boolean", "default": false}
        }
      },
      "output": {"encoding": "application/json"}
    }
  }
}`

const createAccount = `{
  "lexicon": 1,
  "id": "com.atproto.server.createAccount",
  "description": "Create an account.",
  "defs": {
    "main": {
      "type": "procedure",
      "input": {"encoding": "application/json"}
    }
  }
}`

const postRecord = `{
  "lexicon": 1,
  "id": "app.bsky.feed.post",
  "defs": {
    "main": {"type": "record", "key": "tid", "record": {"type": "object", "properties": {}}}
  }
}`

func TestEndpoint_Query(t *testing.T) {
	assert := assert.New(t)

	entry, ok, err := Endpoint([]byte(getTimeline))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal("/xrpc/app.bsky.feed.getTimeline", entry.Key)
	desc := entry.Value.(lexicon.Map)
	method, _ := desc.Get("method")
	assert.Equal("GET", method)
	id, _ := desc.Get("id")
	assert.Equal("app.bsky.feed.getTimeline", id)
	doc, _ := desc.Get("doc")
	assert.Equal("Get a view of the requesting account's home timeline.", doc)

	rawParams, _ := desc.Get("params")
	params := rawParams.(lexicon.Map)
	assert.Equal([]any{"algorithm", "limit", "cursor", "uris", "includePins"}, params.Keys())

	algorithm, _ := params.Get("algorithm")
	assert.Equal(lexicon.Map{{Key: "type", Value: "string"}, {Key: "required", Value: "true"}}, algorithm)
	limit, _ := params.Get("limit")
	assert.Equal(lexicon.Map{
		{Key: "type", Value: "integer"},
		{Key: "required", Value: "false"},
		{Key: "default", Value: float64(50)},
	}, limit)
	uris, _ := params.Get("uris")
	typ, _ := uris.(lexicon.Map).Get("type")
	assert.Equal("anyuri", typ)
	pins, _ := params.Get("includePins")
	def, _ := pins.(lexicon.Map).Get("default")
	assert.Equal(false, def)
}

func TestEndpoint_ProcedureUsesFileDescription(t *testing.T) {
	entry, ok, err := Endpoint([]byte(createAccount))
	require.NoError(t, err)
	require.True(t, ok)

	desc := entry.Value.(lexicon.Map)
	method, _ := desc.Get("method")
	assert.Equal(t, "POST", method)
	doc, _ := desc.Get("doc")
	assert.Equal(t, "Create an account.", doc)
	params, _ := desc.Get("params")
	assert.Empty(t, params)
}

func TestEndpoint_SkipsRecords(t *testing.T) {
	_, ok, err := Endpoint([]byte(postRecord))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEndpoint_Errors(t *testing.T) {
	_, _, err := Endpoint([]byte(`{"lexicon": 2, "id": "a.b.c", "defs": {}}`))
	assert.ErrorContains(t, err, "unsupported lexicon language version")

	_, _, err = Endpoint([]byte(`{"lexicon": 1, "id": "not an nsid", "defs": {}}`))
	assert.ErrorContains(t, err, "invalid NSID")

	_, _, err = Endpoint([]byte(`{"lexicon": 1,`))
	assert.Error(t, err)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app", "bsky"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "com", "atproto"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "bsky", "getTimeline.json"), []byte(getTimeline), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "bsky", "post.json"), []byte(postRecord), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "com", "atproto", "createAccount.json"), []byte(createAccount), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# not a lexicon"), 0o600))

	m, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{
		"/xrpc/app.bsky.feed.getTimeline",
		"/xrpc/com.atproto.server.createAccount",
	}, m.Keys())

	res, err := lexicon.Parse(m)
	require.NoError(t, err)
	assert.Len(t, res, 2)
	assert.Equal(t, lexicon.TypeAnyURI, res[0].Params[3].Type)
}

func TestLoad_SingleFileAndMissing(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "getTimeline.json")
	require.NoError(t, os.WriteFile(file, []byte(getTimeline), 0o600))

	m, err := Load(file, nil)
	require.NoError(t, err)
	assert.Len(t, m, 1)

	_, err = Load(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}
