// Package flagx pre-scans command-line arguments for the few flags that
// must be known before the full flag set is built (config and env files).
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs returns only the arguments in args that belong to one of
// allowedFlags, together with their values.
//
// Both "-c conf.yaml" and "--config=conf.yaml" forms are recognized. A value
// is only taken from the next argument when it does not itself start with "-".
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFileFlag extracts the config file path given via -c/-config
// (single or double dash). Other arguments are ignored so the caller's own
// flag set can still parse them. Returns "" when absent.
func ConfigFileFlag(args []string) string {
	return scanString(args, "config", "c", "Path to config file (JSON or YAML)")
}

// EnvFileFlag extracts the dotenv file path given via -env-file.
func EnvFileFlag(args []string) string {
	return scanString(args, "env-file", "", "Path to .env file")
}

func scanString(args []string, long, short, usage string) string {
	var value string

	names := []string{"-" + long, "--" + long}
	if short != "" {
		names = append(names, "-"+short, "--"+short)
	}

	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&value, long, "", usage)
	if short != "" {
		fs.StringVar(&value, short, "", usage)
	}
	_ = fs.Parse(FilterArgs(args, names))

	return value
}
