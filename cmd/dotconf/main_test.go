package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ygrebnov/dotconf"
)

var testdata = filepath.Join("..", "..", "testdata")

func TestParseArgs(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		o, err := parseArgs([]string{"db.charset"})
		require.NoError(t, err)
		assert.Equal(t, []string{"db.charset"}, o.keys)
		assert.Equal(t, ".yml", o.ext)
		assert.Equal(t, outputText, o.output)
		assert.False(t, o.hasDefault)
		assert.False(t, o.verbose)
		assert.Empty(t, o.paths)
	})

	t.Run("all flags", func(t *testing.T) {
		o, err := parseArgs([]string{
			"-p", "a", "--path", "b", "--ext", ".json", "-d", "none", "-o", "json", "-v",
			"site.title", "site.menu",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, o.paths)
		assert.Equal(t, ".json", o.ext)
		assert.True(t, o.hasDefault)
		assert.Equal(t, "none", o.def)
		assert.Equal(t, outputJSON, o.output)
		assert.True(t, o.verbose)
		assert.Equal(t, []string{"site.title", "site.menu"}, o.keys)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := parseArgs(nil)
		require.Error(t, err)
	})

	t.Run("unknown output", func(t *testing.T) {
		_, err := parseArgs([]string{"-o", "xml", "db.charset"})
		require.Error(t, err)
	})
}

func TestNewRegistry(t *testing.T) {
	logger := zaptest.NewLogger(t)

	reg, err := newRegistry(options{paths: []string{testdata}, ext: "json"}, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{".", testdata}, reg.SearchPaths())
	assert.Equal(t, ".json", reg.Extension())

	_, err = newRegistry(options{ext: ".ini"}, logger)
	require.ErrorIs(t, err, dotconf.ErrUnsupportedConfigFileType)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		opts options
		want string
	}{
		{
			name: "text scalars",
			opts: options{keys: []string{"db.charset", "db.default.host", "db.default.port"}},
			want: "db.charset: utf8mb4\ndb.default.host: 127.0.0.1\ndb.default.port: 3306\n",
		},
		{
			name: "text sequence is comma-joined",
			opts: options{keys: []string{"site.menu"}},
			want: "site.menu: home,blog,about\n",
		},
		{
			name: "text mapping is compact json",
			opts: options{keys: []string{"db.default"}},
			want: `db.default: {"dbname":"app_production","host":"127.0.0.1","pass":"secret","port":3306,"user":"app"}` + "\n",
		},
		{
			name: "missing key prints empty value",
			opts: options{keys: []string{"db.socket"}},
			want: "db.socket: \n",
		},
		{
			name: "missing key with default",
			opts: options{keys: []string{"db.replica"}, def: "none", hasDefault: true},
			want: "db.replica: none\n",
		},
		{
			name: "yaml",
			opts: options{output: outputYAML, keys: []string{"site.menu"}},
			want: "site.menu:\n    - home\n    - blog\n    - about\n",
		},
		{
			name: "json",
			opts: options{output: outputJSON, keys: []string{"site.title", "db.default.port"}},
			want: `{"site.title":"Example Site"}` + "\n" + `{"db.default.port":3306}` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := dotconf.New(dotconf.WithSearchPaths(testdata))
			var out bytes.Buffer

			err := run(tt.opts, reg, &out, zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRun_StopsAtFirstError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := dotconf.New(dotconf.WithSearchPaths(testdata))
	var out bytes.Buffer

	err := run(options{keys: []string{"db.charset", "nope.key", "site.title"}}, reg, &out, zap.New(core))
	require.ErrorIs(t, err, dotconf.ErrFileNotFound)
	assert.Equal(t, "db.charset: utf8mb4\n", out.String())

	entries := logs.FilterMessage("lookup failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "nope.key", entries[0].ContextMap()["key"])
}

func TestRun_InvalidKey(t *testing.T) {
	reg := dotconf.New(dotconf.WithSearchPaths(testdata))
	err := run(options{keys: []string{"db"}}, reg, &bytes.Buffer{}, zap.NewNop())
	require.ErrorIs(t, err, dotconf.ErrInvalidKey)
}

func TestFormatText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "x", want: "x"},
		{name: "int", in: 3, want: "3"},
		{name: "bool", in: true, want: "true"},
		{name: "nested sequence", in: []any{"a", []any{"b", "c"}}, want: "a,b,c"},
		{name: "mapping", in: map[string]any{"b": 2, "a": 1}, want: `{"a":1,"b":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatText(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
