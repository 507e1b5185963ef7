// Package config abstracts all program configuration.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/asaskevich/govalidator"
	"github.com/ghodss/yaml"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"github.com/vainilie/imabi/reporter"
)

// Logger configuration for single logger.
type Logger struct {
	Level       string `json:"level"`
	Destination string `json:"destination"`
	Mode        string `json:"mode"`
}

// Site describes the source web site being converted.
type Site struct {
	BaseURL         string `json:"base_url"`
	IndexSelector   string `json:"index_selector"`
	ArticleSelector string `json:"article_selector"`
	GlossaryPath    string `json:"glossary_path"`
	UserAgent       string `json:"user_agent"`
	TimeoutSec      int    `json:"timeout_sec"`
	Concurrency     int    `json:"concurrency"`
}

// Cover configuration for book cover processing.
type Cover struct {
	ImagePath string `json:"image_path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Generate  bool   `json:"generate"`
}

// Images configuration for image normalization.
type Images struct {
	ScaleFactor float64 `json:"scale_factor"`
	ConvertWebP bool    `json:"convert_webp"`
}

// Pages keeps templates for generated front matter.
type Pages struct {
	TitleTemplate   string `json:"title_template"`
	CreditsTemplate string `json:"credits_template"`
}

// Doc format configuration for book processor.
type Doc struct {
	Title                 string   `json:"title"`
	Language              string   `json:"language"`
	Authors               []string `json:"authors"`
	Stylesheet            string   `json:"stylesheet"`
	CSSFile               string   `json:"css_file"`
	OutputName            string   `json:"output_name"`
	FileNameTransliterate bool     `json:"transliterate_file_name"`
	FixZip                bool     `json:"fix_zip"`
	Images                Images   `json:"images"`
	Cover                 Cover    `json:"cover"`
	Pages                 Pages    `json:"pages"`
}

// Config keeps all configuration values.
type Config struct {
	// path of the base configuration directory, used to resolve relative paths
	Path string `json:"-"`

	Site          Site   `json:"site"`
	Doc           Doc    `json:"document"`
	ConsoleLogger Logger `json:"-"`
	FileLogger    Logger `json:"-"`

	merged map[string]interface{}
}

// Validate checks configuration invariants which cannot be expressed structurally.
func (conf *Config) Validate() error {
	if !govalidator.IsURL(conf.Site.BaseURL) {
		return fmt.Errorf("base site url is invalid: %s", conf.Site.BaseURL)
	}
	if len(conf.Site.IndexSelector) == 0 || len(conf.Site.ArticleSelector) == 0 {
		return errors.New("content selectors cannot be empty")
	}
	return nil
}

var defaultConfig = []byte(`{
  "site": {
    "base_url": "https://imabi.org",
    "index_selector": "aside",
    "article_selector": "article",
    "glossary_path": "glossary",
    "user_agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
    "timeout_sec": 60,
    "concurrency": 4
  },
  "document": {
    "title": "IMABI 今日 - Guided Japanese Mastery",
    "language": "en",
    "authors": [ "Seth Coonrod", "Taylor V. Edwards" ],
    "output_name": "imabi.epub",
    "images": {
      "scale_factor": 0,
      "convert_webp": true
    },
    "cover": {
      "width": 1600,
      "height": 2560,
      "generate": true
    }
  },
  "logger": {
    "console": {
      "level": "normal"
    },
    "file": {
      "destination": "conversion.log",
      "level": "none",
      "mode": "append"
    }
  }
}`)

func decodeSource(fname string, data []byte) (map[string]interface{}, error) {

	m := make(map[string]interface{})
	switch strings.ToLower(filepath.Ext(fname)) {
	case ".yml", ".yaml":
		j, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("unable to parse YAML configuration: %w", err)
		}
		if err := json.Unmarshal(j, &m); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("unable to parse TOML configuration: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("unable to parse JSON configuration: %w", err)
		}
	}
	return m, nil
}

// BuildConfig loads configuration, merging sources left to right over built-in defaults.
func BuildConfig(fnames ...string) (*Config, error) {

	var err error
	// base configuration directory, always calculated from the path of the first configuration file
	var base string

	merged, err := decodeSource("defaults.json", defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("bad built-in configuration: %w", err)
	}

	var wasStdin bool
	for i, fname := range fnames {
		switch {
		case fname == "-":
			// NOTE: only one configuration could be read from STDIN, the rest should be ignored
			if !wasStdin {
				wasStdin = true
				// stdin - json format ONLY
				s, err := io.ReadAll(os.Stdin)
				if err != nil {
					return nil, fmt.Errorf("unable to read configuration from stdin: %w", err)
				}
				src, err := decodeSource("stdin.json", s)
				if err != nil {
					return nil, err
				}
				if err := mergo.Merge(&merged, src, mergo.WithOverride); err != nil {
					return nil, fmt.Errorf("unable to merge configuration from stdin: %w", err)
				}
				if i == 0 {
					if base, err = os.Getwd(); err != nil {
						return nil, fmt.Errorf("unable to get working directory: %w", err)
					}
				}
			}
		case len(fname) > 0:
			data, err := os.ReadFile(fname)
			if err != nil {
				return nil, fmt.Errorf("unable to read configuration %s: %w", fname, err)
			}
			src, err := decodeSource(fname, data)
			if err != nil {
				return nil, fmt.Errorf("unable to parse configuration %s: %w", fname, err)
			}
			if err := mergo.Merge(&merged, src, mergo.WithOverride); err != nil {
				return nil, fmt.Errorf("unable to merge configuration %s: %w", fname, err)
			}
			if i == 0 {
				if base, err = filepath.Abs(filepath.Dir(fname)); err != nil {
					return nil, fmt.Errorf("unable to get configuration directory: %w", err)
				}
			}
		}
	}

	conf := Config{Path: base, merged: merged}

	scan := func(dst interface{}, keys ...string) error {
		var node interface{} = merged
		for _, k := range keys {
			m, ok := node.(map[string]interface{})
			if !ok {
				return nil
			}
			if node, ok = m[k]; !ok {
				return nil
			}
		}
		data, err := json.Marshal(node)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, dst)
	}

	if err := scan(&conf.Site, "site"); err != nil {
		return nil, fmt.Errorf("unable to read site configuration: %w", err)
	}
	if err := scan(&conf.Doc, "document"); err != nil {
		return nil, fmt.Errorf("unable to read document format configuration: %w", err)
	}
	if err := scan(&conf.ConsoleLogger, "logger", "console"); err != nil {
		return nil, fmt.Errorf("unable to read console logger configuration: %w", err)
	}
	if err := scan(&conf.FileLogger, "logger", "file"); err != nil {
		return nil, fmt.Errorf("unable to read file logger configuration: %w", err)
	}

	// some defaults
	if conf.Site.TimeoutSec <= 0 {
		conf.Site.TimeoutSec = 60
	}
	if conf.Site.Concurrency <= 0 {
		conf.Site.Concurrency = 4
	}
	if conf.Doc.Cover.Width <= 0 || conf.Doc.Cover.Height <= 0 {
		conf.Doc.Cover.Width, conf.Doc.Cover.Height = 1600, 2560
	}
	if len(conf.Doc.OutputName) == 0 {
		conf.Doc.OutputName = "imabi.epub"
	}
	return &conf, nil
}

// AbsolutePath resolves a possibly relative path against the base configuration directory.
func (conf *Config) AbsolutePath(path string) string {
	if len(path) == 0 || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(conf.Path, path)
}

// GetBytes returns the merged configuration, pretty-printed.
func (conf *Config) GetBytes() ([]byte, error) {
	data, err := json.Marshal(conf.merged)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	err = json.Indent(&out, data, "", "  ")
	return out.Bytes(), err
}

// GetActualBytes returns configuration values as the program sees them, pretty-printed.
func (conf *Config) GetActualBytes() ([]byte, error) {
	data, err := json.Marshal(map[string]interface{}{
		"site":     conf.Site,
		"document": conf.Doc,
		"logger": map[string]interface{}{
			"console": conf.ConsoleLogger,
			"file":    conf.FileLogger,
		},
	})
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	err = json.Indent(&out, data, "", "  ")
	return out.Bytes(), err
}

// CleanFileName removes characters some file systems do not like from the name.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if strings.ContainsRune(`<>":/\|?*`+string(rune(0)), sym) {
			return -1
		}
		return sym
	}, in)
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}

// EnableColorOutput checks if colorized output is possible on the stream.
func EnableColorOutput(stream *os.File) bool {
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	fi, err := stream.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// PrepareLog create logger out of current configuration.
func (conf *Config) PrepareLog(rpt *reporter.Report) (*zap.Logger, error) {

	// Console - split stdout and stderr, handle colors and redirection

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(os.Stdout) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	consoleEncoderLP := zapcore.NewConsoleEncoder(ec)

	ec = zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(os.Stderr) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	consoleEncoderHP := newEncoder(ec) // filter errorVerbose

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	var consoleCoreHP, consoleCoreLP zapcore.Core
	switch conf.ConsoleLogger.Level {
	case "normal":
		consoleCoreLP = zapcore.NewCore(consoleEncoderLP, zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return zapcore.InfoLevel <= lvl && lvl < zapcore.ErrorLevel
			}))
		consoleCoreHP = zapcore.NewCore(consoleEncoderHP, zapcore.Lock(os.Stderr), highPriority)
	case "debug":
		consoleCoreLP = zapcore.NewCore(consoleEncoderLP, zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return zapcore.DebugLevel <= lvl && lvl < zapcore.ErrorLevel
			}))
		consoleCoreHP = zapcore.NewCore(consoleEncoderHP, zapcore.Lock(os.Stderr), highPriority)
	default:
		consoleCoreLP = zapcore.NewNopCore()
		consoleCoreHP = zapcore.NewNopCore()
	}

	// File

	opener := func(fname, mode string) (f *os.File, err error) {
		flags := os.O_CREATE | os.O_WRONLY
		if mode == "append" {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		if f, err = os.OpenFile(fname, flags, 0644); err != nil {
			return nil, err
		}
		return f, nil
	}

	var (
		fileEncoder    zapcore.Encoder
		fileCore       zapcore.Core
		logLevel       zap.AtomicLevel
		logRequested   bool
		levelRequested = conf.FileLogger.Level
		modeRequested  = conf.FileLogger.Mode
	)

	if rpt != nil {
		// if report is requested always set maximum available logging level for file logger
		levelRequested = "debug"
		modeRequested = "overwrite"
	}

	switch levelRequested {
	case "debug":
		fileEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
		logRequested = true
	case "normal":
		fileEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
		logRequested = true
	}

	var newName string
	if logRequested {
		if f, err := opener(conf.FileLogger.Destination, modeRequested); err == nil {
			fileCore = zapcore.NewCore(fileEncoder, zapcore.Lock(f), logLevel)
			rpt.Store("file.log", f.Name())
		} else if f, err = os.CreateTemp("", "conversion.*.log"); err == nil {
			newName = f.Name()
			fileCore = zapcore.NewCore(fileEncoder, zapcore.Lock(f), logLevel)
			rpt.Store("file.log", newName)
		} else {
			return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
		}
	} else {
		fileCore = zapcore.NewNopCore()
	}

	core := zap.New(zapcore.NewTee(consoleCoreHP, consoleCoreLP, fileCore), zap.AddCaller())
	if len(newName) != 0 {
		// log was redirected - we need to report this
		core.Warn("Log file was redirected to new location", zap.String("location", newName))
	}
	return core, nil
}

// When logging error to console - do not output verbose message.

type consoleEnc struct {
	zapcore.Encoder
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return consoleEnc{zapcore.NewConsoleEncoder(cfg)}
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	var newFields []zapcore.Field
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			// presently superficial - but we may need to shorten what is printed to console in the future
			e := f.Interface.(error)
			f.Interface = errors.New(e.Error())
		}
		newFields = append(newFields, f)
	}
	return c.Encoder.EncodeEntry(ent, newFields)
}
