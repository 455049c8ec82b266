package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gilab/labsite/internal/flagx"
	"github.com/gilab/labsite/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used only for decoding config files. Absent keys
// stay nil and leave the corresponding Config field alone.
type FileConfig struct {
	APIBaseURL     *string         `json:"api_url" yaml:"api_url"`
	Source         *string         `json:"source" yaml:"source"`
	StaticBaseURL  *string         `json:"static_url" yaml:"static_url"`
	StaticDir      *string         `json:"static_dir" yaml:"static_dir"`
	S3Bucket       *string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Prefix       *string         `json:"s3_prefix" yaml:"s3_prefix"`
	S3Region       *string         `json:"s3_region" yaml:"s3_region"`
	S3Endpoint     *string         `json:"s3_endpoint" yaml:"s3_endpoint"`
	DatabasePath   *string         `json:"db" yaml:"db"`
	NoPersist      *bool           `json:"no_persist" yaml:"no_persist"`
	QueryRetry     *int            `json:"query_retry" yaml:"query_retry"`
	RetryBase      *timex.Duration `json:"retry_base" yaml:"retry_base"`
	RequestTimeout *timex.Duration `json:"timeout" yaml:"timeout"`
	LogLevel       *string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the file named by -c/-config, if any.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setString(&cfg.Source, fc.Source)
	setString(&cfg.StaticBaseURL, fc.StaticBaseURL)
	setString(&cfg.StaticDir, fc.StaticDir)
	setString(&cfg.S3Bucket, fc.S3Bucket)
	setString(&cfg.S3Prefix, fc.S3Prefix)
	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3Endpoint, fc.S3Endpoint)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.LogLevel, fc.LogLevel)
	if fc.NoPersist != nil {
		cfg.NoPersist = *fc.NoPersist
	}
	if fc.QueryRetry != nil {
		cfg.QueryRetry = *fc.QueryRetry
	}
	if fc.RetryBase != nil {
		cfg.RetryBase = fc.RetryBase.Duration
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
