// Command dotconf prints values from configuration files resolved through a
// dotconf registry.
//
//	dotconf --path ./config db.default.host site.menu
//	dotconf -p ./config -o json --default localhost db.replica.host
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ygrebnov/dotconf"
	"github.com/ygrebnov/dotconf/internal/logging"
	"github.com/ygrebnov/dotconf/streams"
)

const (
	outputText = "text"
	outputYAML = "yaml"
	outputJSON = "json"
)

type options struct {
	paths      []string
	ext        string
	def        string
	hasDefault bool
	output     string
	verbose    bool
	keys       []string
}

func newApp(o *options) *kingpin.Application {
	app := kingpin.New("dotconf", "Print values from configuration files addressed by dotted keys (file.key.subkey)")
	app.Flag("path", "Directory to search for configuration files, after the current directory. Repeatable; earlier entries win.").
		Short('p').StringsVar(&o.paths)
	app.Flag("ext", "Configuration file extension (.yml, .yaml or .json)").
		Default(".yml").StringVar(&o.ext)
	app.Flag("default", "Value printed when a key is missing").
		Short('d').IsSetByUser(&o.hasDefault).StringVar(&o.def)
	app.Flag("output", "Output format").
		Short('o').Default(outputText).EnumVar(&o.output, outputText, outputYAML, outputJSON)
	app.Flag("verbose", "Log file resolution to stderr").
		Short('v').BoolVar(&o.verbose)
	app.Arg("key", "Dotted key to print").Required().StringsVar(&o.keys)
	return app
}

func parseArgs(args []string) (options, error) {
	var o options
	if _, err := newApp(&o).Parse(args); err != nil {
		return options{}, err
	}
	return o, nil
}

func main() {
	o, err := parseArgs(os.Args[1:])
	kingpin.FatalIfError(err, "parse arguments")

	logger, err := logging.New(o.verbose)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	reg, err := newRegistry(o, logger)
	if err != nil {
		logger.Fatal("failed to configure registry", zap.Error(err))
	}

	if err := run(o, reg, os.Stdout, logger); err != nil {
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newRegistry(o options, logger *zap.Logger) (*dotconf.Registry, error) {
	reg := dotconf.New(
		dotconf.WithSearchPaths(o.paths...),
		dotconf.WithStreams(streams.Zap(logger, zapcore.InfoLevel, zapcore.DebugLevel)),
	)
	if err := reg.SetExtension(o.ext); err != nil {
		return nil, err
	}
	logger.Debug("registry ready",
		zap.Strings("search_paths", reg.SearchPaths()),
		zap.String("ext", reg.Extension()))
	return reg, nil
}

// run prints every key in o.keys and stops at the first lookup error.
func run(o options, reg *dotconf.Registry, w io.Writer, logger *zap.Logger) error {
	for _, key := range o.keys {
		var def []any
		if o.hasDefault {
			def = append(def, o.def)
		}
		v, err := reg.Get(key, def...)
		if err != nil {
			logger.Error("lookup failed", zap.String("key", key), zap.Error(err))
			return err
		}
		if err := write(w, o.output, key, v); err != nil {
			logger.Error("write value", zap.String("key", key), zap.Error(err))
			return err
		}
	}
	return nil
}

func write(w io.Writer, format, key string, v any) error {
	switch format {
	case outputYAML:
		data, err := yaml.Marshal(map[string]any{key: v})
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case outputJSON:
		data, err := json.Marshal(map[string]any{key: v})
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	default:
		s, err := formatText(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s: %s\n", key, s)
		return err
	}
}

// formatText renders scalars as is, sequences comma-joined and mappings as
// compact JSON.
func formatText(v any) (string, error) {
	switch n := v.(type) {
	case nil:
		return "", nil
	case []any:
		parts := make([]string, 0, len(n))
		for _, item := range n {
			s, err := formatText(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	case map[string]any:
		data, err := json.Marshal(n)
		if err != nil {
			return "", fmt.Errorf("marshal json: %w", err)
		}
		return string(data), nil
	default:
		return fmt.Sprint(n), nil
	}
}
