package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/gilab/labsite/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "LABSITE_"

const defaultEnvFile = ".env"

var lookupEnv = os.LookupEnv

// parseEnv overlays cfg with LABSITE_* variables. Values come from the
// dotenv file named by -env-file (or ./.env if it exists) unless the same
// variable is set in the process environment.
func parseEnv(cfg *Config, args []string) error {
	file := flagx.EnvFileFlag(args)
	explicit := file != ""
	if !explicit {
		file = defaultEnvFile
	}

	vars, err := godotenv.Read(file)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read env file %s: %w", file, err)
		}
		vars = map[string]string{}
	}

	get := func(name string) (string, bool) {
		if v, ok := lookupEnv(envPrefix + name); ok {
			return v, true
		}
		v, ok := vars[envPrefix+name]
		return v, ok
	}

	stringVars := map[string]*string{
		"API_URL":       &cfg.APIBaseURL,
		"SOURCE":        &cfg.Source,
		"STATIC_URL":    &cfg.StaticBaseURL,
		"STATIC_DIR":    &cfg.StaticDir,
		"S3_BUCKET":     &cfg.S3Bucket,
		"S3_PREFIX":     &cfg.S3Prefix,
		"S3_REGION":     &cfg.S3Region,
		"S3_ENDPOINT":   &cfg.S3Endpoint,
		"S3_ACCESS_KEY": &cfg.S3AccessKey,
		"S3_SECRET_KEY": &cfg.S3SecretKey,
		"DB":            &cfg.DatabasePath,
		"LOG_LEVEL":     &cfg.LogLevel,
	}
	for name, dst := range stringVars {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	if v, ok := get("NO_PERSIST"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sNO_PERSIST: %w", envPrefix, err)
		}
		cfg.NoPersist = b
	}
	if v, ok := get("QUERY_RETRY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sQUERY_RETRY: %w", envPrefix, err)
		}
		cfg.QueryRetry = n
	}

	durations := map[string]*time.Duration{
		"RETRY_BASE": &cfg.RetryBase,
		"TIMEOUT":    &cfg.RequestTimeout,
	}
	for name, dst := range durations {
		if v, ok := get(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = d
		}
	}
	return nil
}
