package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/gilab/labsite/internal/flagx"
)

// FlagNames lists the long names parseFlags understands, without dashes.
var FlagNames = []string{
	"api-url", "source", "static-url", "static-dir",
	"s3-bucket", "s3-prefix", "s3-region", "s3-endpoint",
	"db", "no-persist", "retry", "retry-base", "timeout", "log-level",
}

// parseFlags populates Config fields from command-line flags. Only the
// flags it knows about are taken from args, so other components (the
// command tree, -c, -env-file) can share the same argument list.
func parseFlags(cfg *Config, args []string) error {
	known := make([]string, 0, 2*len(FlagNames))
	for _, n := range FlagNames {
		known = append(known, "-"+n, "--"+n)
	}
	args = flagx.FilterArgs(normalizeBools(args), known)

	fs := flag.NewFlagSet("labcli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "api-url", cfg.APIBaseURL, "base URL of the lab API")
	fs.StringVar(&cfg.Source, "source", cfg.Source, "content source: api or static")
	fs.StringVar(&cfg.StaticBaseURL, "static-url", cfg.StaticBaseURL, "base URL of the static export")
	fs.StringVar(&cfg.StaticDir, "static-dir", cfg.StaticDir, "directory holding the static export")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "bucket holding the static export")
	fs.StringVar(&cfg.S3Prefix, "s3-prefix", cfg.S3Prefix, "key prefix inside the bucket")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "bucket region")
	fs.StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "custom S3 endpoint")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "path of the local SQLite file")
	fs.BoolVar(&cfg.NoPersist, "no-persist", cfg.NoPersist, "keep the token in memory only")
	fs.IntVar(&cfg.QueryRetry, "retry", cfg.QueryRetry, "retries for failed queries")
	fs.DurationVar(&cfg.RetryBase, "retry-base", cfg.RetryBase, "first retry delay")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}

// normalizeBools rewrites a bare boolean flag to its "=true" form so that
// FilterArgs does not take the following argument as its value.
func normalizeBools(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "-no-persist" || a == "--no-persist" {
			a += "=true"
		}
		out[i] = a
	}
	return out
}
