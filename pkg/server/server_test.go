package server

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/dictionary"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newCompleter(t *testing.T) *suggest.Completer {
	t.Helper()
	c, err := suggest.NewCompleter([]dictionary.Record{
		{Phrase: "cat", Frequency: 5},
		{Phrase: "car", Frequency: 3},
		{Phrase: "cart", Frequency: 1},
		{Phrase: "hello", Frequency: 2},
		{Phrase: "hallo", Frequency: 1},
	})
	require.NoError(t, err)
	return c
}

// run feeds reqs to a server and returns a decoder over its output.
func run(t *testing.T, cfg *config.Config, configPath string, reqs ...Request) (*msgpack.Decoder, error) {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}
	srv := NewServerWithIO(newCompleter(t), cfg, configPath, &in, &out)
	err := srv.Start()

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)
	return dec, err
}

func TestComplete(t *testing.T) {
	dec, err := run(t, nil, "", Request{ID: "r1", Prefix: "ca", Limit: 2})
	require.NoError(t, err)

	var resp CompletionResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "r1", resp.ID)
	assert.Equal(t, 2, resp.Count)
	assert.False(t, resp.Fuzzy)
	assert.Equal(t, []CompletionSuggestion{
		{Word: "cat", Frequency: 5, Rank: 1},
		{Word: "car", Frequency: 3, Rank: 2},
	}, resp.Suggestions)
	assert.GreaterOrEqual(t, resp.TimeTaken, int64(0))
}

func TestCompleteFuzzyAndLimits(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxLimit = 3
	cfg.Server.DefaultLimit = 1

	dec, err := run(t, cfg, "",
		Request{ID: "a", Action: "complete", Prefix: "helo"},
		Request{ID: "b", Prefix: "c", Limit: 50},
	)
	require.NoError(t, err)

	var fz CompletionResponse
	require.NoError(t, dec.Decode(&fz))
	assert.True(t, fz.Fuzzy)
	require.Len(t, fz.Suggestions, 1, "default limit applies")
	assert.Equal(t, "hello", fz.Suggestions[0].Word)

	var clamped CompletionResponse
	require.NoError(t, dec.Decode(&clamped))
	assert.Equal(t, 3, clamped.Count, "limit is clamped to max_limit")
	assert.False(t, clamped.Fuzzy)
}

func TestPrefixTooLong(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxPrefix = 4

	dec, err := run(t, cfg, "",
		Request{ID: "long", Prefix: "hellooo"},
		Request{ID: "ok", Prefix: "ééé"},
	)
	require.NoError(t, err)

	var e CompletionError
	require.NoError(t, dec.Decode(&e))
	assert.Equal(t, CompletionError{ID: "long", Error: "prefix exceeds 4 characters", Code: 400}, e)

	// Length is counted in characters, not bytes.
	var resp CompletionResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "ok", resp.ID)
}

func TestFilter(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.EnableFilter = true

	dec, err := run(t, cfg, "", Request{ID: "f", Prefix: "123"})
	require.NoError(t, err)

	var resp CompletionResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.Suggestions)
}

func TestOtherActions(t *testing.T) {
	dec, err := run(t, nil, "",
		Request{ID: "l1", Action: "lookup", Phrase: "Cat"},
		Request{ID: "l2", Action: "lookup", Phrase: "dog"},
		Request{ID: "s", Action: "stats"},
		Request{ID: "h", Action: "health"},
		Request{ID: "x", Action: "explode"},
	)
	require.NoError(t, err)

	var found LookupResponse
	require.NoError(t, dec.Decode(&found))
	assert.Equal(t, LookupResponse{ID: "l1", Status: "ok", Found: true, Frequency: 5}, found)

	var missing LookupResponse
	require.NoError(t, dec.Decode(&missing))
	assert.False(t, missing.Found)

	var stats StatsResponse
	require.NoError(t, dec.Decode(&stats))
	assert.Equal(t, 5, stats.Stats["totalWords"])
	assert.Equal(t, 5, stats.Stats["maxFrequency"])

	var health StatusResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, StatusResponse{ID: "h", Status: "ok"}, health)

	var unknown CompletionError
	require.NoError(t, dec.Decode(&unknown))
	assert.Equal(t, 400, unknown.Code)
	assert.True(t, strings.Contains(unknown.Error, "explode"))
}

func TestUndecodableInput(t *testing.T) {
	var out bytes.Buffer
	srv := NewServerWithIO(newCompleter(t), nil, "", bytes.NewReader([]byte{0xc1}), &out)
	assert.Error(t, srv.Start())
}

func TestConfigReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nmax_limit = 1\n"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Server.ReloadEvery = 2

	dec, err := run(t, cfg, path,
		Request{ID: "1", Prefix: "ca", Limit: 3},
		Request{ID: "2", Prefix: "ca", Limit: 3},
	)
	require.NoError(t, err)

	var before, after CompletionResponse
	require.NoError(t, dec.Decode(&before))
	require.NoError(t, dec.Decode(&after))
	assert.Equal(t, 3, before.Count)
	assert.Equal(t, 1, after.Count, "second request sees the reloaded limit")
}
