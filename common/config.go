package common

import (
	"fmt"
	"time"
)

// Configuration is a mostly runtime consideration.  Components read the
// keys they care about through the optional accessors and fall back to
// their own defaults.  A value that exists but has the wrong type is a
// deployment error, and the accessors panic on it so the process dies as
// early as possible.
//
// Durations may be stored as time.Duration, or as plain integers that are
// interpreted as milliseconds.  The latter keeps env files readable.
type ConfigType string

const (
	Bool     ConfigType = "bool"
	Int      ConfigType = "int"
	String   ConfigType = "string"
	Duration ConfigType = "int(milliseconds)"
)

type ConfigParsingError struct {
	expected ConfigType
	key      string
	val      interface{}
}

func (c ConfigParsingError) Error() string {
	return fmt.Sprintf("Error parsing config key [%s].  Expected type [%s], which can't be converted from [%v]", c.key, c.expected, c.val)
}

type Config interface {
	OptionalInt(key string, def int) int
	OptionalBool(key string, def bool) bool
	OptionalString(key string, def string) string
	OptionalDuration(key string, def time.Duration) time.Duration

	// Returns a copy of this config with the given key overridden.
	With(key string, val interface{}) Config
}

func NewEmptyConfig() Config {
	return NewConfig(nil)
}

func NewConfig(internal map[string]interface{}) Config {
	copy := make(map[string]interface{})
	for k, v := range internal {
		copy[k] = v
	}
	return &config{copy}
}

type config struct {
	internal map[string]interface{}
}

func (c *config) With(key string, val interface{}) Config {
	ret := NewConfig(c.internal).(*config)
	ret.internal[key] = val
	return ret
}

func (c *config) OptionalInt(key string, def int) int {
	val, ok := c.internal[key]
	if !ok {
		return def
	}

	ret, ok := val.(int)
	if !ok {
		panic(ConfigParsingError{Int, key, val})
	}
	return ret
}

func (c *config) OptionalBool(key string, def bool) bool {
	val, ok := c.internal[key]
	if !ok {
		return def
	}

	ret, ok := val.(bool)
	if !ok {
		panic(ConfigParsingError{Bool, key, val})
	}
	return ret
}

func (c *config) OptionalString(key string, def string) string {
	val, ok := c.internal[key]
	if !ok {
		return def
	}

	ret, ok := val.(string)
	if !ok {
		panic(ConfigParsingError{String, key, val})
	}
	return ret
}

func (c *config) OptionalDuration(key string, def time.Duration) time.Duration {
	val, ok := c.internal[key]
	if !ok {
		return def
	}

	switch typed := val.(type) {
	case time.Duration:
		return typed
	case int:
		return time.Duration(typed) * time.Millisecond
	}

	panic(ConfigParsingError{Duration, key, val})
}
