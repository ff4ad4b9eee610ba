package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	PrimaryConfig struct {
		Enable  bool          `yaml:"enable"`
		Binary  string        `yaml:"binary" validate:"required_if=Enable true"`
		Filter  string        `yaml:"filter" validate:"required_if=Enable true"`
		Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	}

	FallbackConfig struct {
		Enable         bool `yaml:"enable"`
		InlineImages   bool `yaml:"inline_images"`
		ReencodeImages bool `yaml:"reencode_images"`
	}

	ConversionConfig struct {
		WorkDir               string         `yaml:"work_dir" sanitize:"path_clean" validate:"omitempty,dirpath"`
		FixZip                bool           `yaml:"fix_zip"`
		OutputNameTemplate    string         `yaml:"output_name_template"`
		FileNameTransliterate bool           `yaml:"file_name_transliterate"`
		Primary               PrimaryConfig  `yaml:"primary"`
		Fallback              FallbackConfig `yaml:"fallback"`
	}

	PostProcessConfig struct {
		FixLineHeight     bool   `yaml:"fix_line_height"`
		FixHeadersFooters bool   `yaml:"fix_headers_footers"`
		FixFontFallbacks  bool   `yaml:"fix_font_fallbacks"`
		PreservePtUnits   bool   `yaml:"preserve_pt_units"`
		HeaderReserve     string `yaml:"header_reserve" validate:"required"`
		FooterReserve     string `yaml:"footer_reserve" validate:"required"`
	}

	PatchConfig struct {
		MaxChanges    int `yaml:"max_changes" validate:"min=1"`
		PreviewLength int `yaml:"preview_length" validate:"min=0"`
	}

	StoreConfig struct {
		Path     string `yaml:"path" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required"`
		PoolSize int    `yaml:"pool_size" validate:"min=1"`
	}

	Config struct {
		Version     int               `yaml:"version" validate:"eq=1"`
		Conversion  ConversionConfig  `yaml:"conversion"`
		PostProcess PostProcessConfig `yaml:"post_process"`
		Patch       PatchConfig       `yaml:"patch"`
		Store       StoreConfig       `yaml:"store"`
		Logging     LoggingConfig     `yaml:"logging"`
		Reporting   ReporterConfig    `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
