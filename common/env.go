package common

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Loads a config from the environment.  Only variables starting with
// the given prefix are considered.  Names are translated to config keys
// by lower casing and replacing underscores with dots, so that
//
//   RELAY_SESSION_IDLE_TIMEOUT=30000
//
// becomes the key "relay.session.idle.timeout".  Values that parse as
// integers or booleans are stored as such.
//
// Any files given are read first (in order) and the process environment
// is layered on top of them.
func LoadEnvConfig(prefix string, files ...string) (Config, error) {
	vars := make(map[string]string)
	if len(files) > 0 {
		fromFiles, err := godotenv.Read(files...)
		if err != nil {
			return nil, errors.Wrapf(err, "Error reading env files %v", files)
		}
		for k, v := range fromFiles {
			vars[k] = v
		}
	}

	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			vars[kv[:i]] = kv[i+1:]
		}
	}

	return NewConfig(parseEnv(prefix, vars)), nil
}

func parseEnv(prefix string, vars map[string]string) map[string]interface{} {
	ret := make(map[string]interface{})
	for k, v := range vars {
		if !strings.HasPrefix(k, prefix) {
			continue
		}

		ret[envKey(k)] = envVal(v)
	}
	return ret
}

func envKey(name string) string {
	return strings.Replace(strings.ToLower(name), "_", ".", -1)
}

func envVal(raw string) interface{} {
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
