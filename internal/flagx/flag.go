// Package flagx lets several config layers share os.Args without tripping over
// each other's flags.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// ConfigFileEnv names the environment variable consulted when no -c/-config
// flag is given.
const ConfigFileEnv = "BOT_CONFIG"

// FilterArgs keeps only the flags named in allowed, together with their values.
//
// Both "-c conf.json" and "-c=conf.json" forms are recognized. A token that
// starts with "-" is never consumed as a value.
func FilterArgs(args []string, allowed []string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		set[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, keep := set[name]; keep {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, keep := set[arg]; !keep {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFile returns the config file path given via -c or -config in args,
// falling back to $BOT_CONFIG. Empty means "no file".
func ConfigFile(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	return path
}
