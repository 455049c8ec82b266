// Package config loads runtime configuration for labcli.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A dotenv file (-env-file, or ./.env when present) and the process
//     environment, using LABSITE_* variables. Process variables win over
//     the file.
//  3. A config file selected via -c or -config. Files ending in .yaml or
//     .yml are read as YAML, anything else as JSON.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-api-url string      base URL of the lab API (scheme and host)
//	-source string       where public content comes from: api or static
//	-static-url string   base URL of the static export
//	-static-dir string   local directory holding the static export
//	-s3-bucket string    bucket holding the static export
//	-s3-prefix string    key prefix inside the bucket
//	-s3-region string    bucket region
//	-db string           path of the local SQLite file
//	-no-persist          keep the token in memory only
//	-retry int           retries for failed queries
//	-retry-base duration first retry delay
//	-timeout duration    per-request timeout
//	-log-level string    debug, info, warn or error
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "2s" or
// integer nanoseconds:
//
//	api_url: https://lab.example.org
//	source: static
//	static_url: https://lab.example.org
//	query_retry: 2
//	retry_base: 500ms
package config
