// Package config holds the value conversions shared by the ConfigStore
// implementations. The stores keep flattened dot-notation keys and raw
// TOML values; these helpers turn them into the types the ports promise.
package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// String converts a raw value to a string with ${VAR} references
// expanded. Non-string values yield "".
func String(val any) string {
	s, ok := val.(string)
	if !ok {
		return ""
	}
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

// envRef matches ${VAR}. Bare $VAR is not expanded.
var envRef = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}`)

// Int converts integers and integral floats. Other values yield 0.
func Int(val any) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(String(v)))
		return n
	default:
		return 0
	}
}

// Float converts numeric values, widening integers.
func Float(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(String(v)), 64)
		return f
	default:
		return 0
	}
}

// Bool converts booleans and "true"/"false" strings.
func Bool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(String(v)))
		return b
	default:
		return false
	}
}

// Duration converts Go duration strings ("30s") and whole seconds.
// ok is false when val does not hold a valid duration.
func Duration(val any) (time.Duration, bool) {
	switch v := val.(type) {
	case int64:
		return time.Duration(v) * time.Second, true
	case int:
		return time.Duration(v) * time.Second, true
	case float64:
		return time.Duration(v * float64(time.Second)), true
	case time.Duration:
		return v, true
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(String(v)))
		if err != nil {
			return 0, false
		}
		return d, true
	default:
		return 0, false
	}
}

// StringSlice converts TOML arrays and comma separated strings.
func StringSlice(val any) []string {
	switch v := val.(type) {
	case []string:
		out := make([]string, len(v))
		for i, s := range v {
			out[i] = String(s)
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, String(s))
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(String(v), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return nil
	}
}

// Text renders any scalar or list value as a string, the form provider
// config sections are handed to adapters in.
func Text(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return String(v)
	case []any, []string:
		return strings.Join(StringSlice(v), ",")
	default:
		return fmt.Sprint(v)
	}
}

// Keys returns the keys of data under prefix with the prefix removed,
// sorted. An empty prefix returns every key.
func Keys(data map[string]any, prefix string) []string {
	var out []string
	for k := range data {
		if rest, ok := strings.CutPrefix(k, prefix); ok && rest != "" {
			out = append(out, rest)
		}
	}
	sort.Strings(out)
	return out
}

// Flatten converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func Flatten(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)
	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range Flatten(nested, fullKey) {
				result[k] = v
			}
			continue
		}
		result[fullKey] = value
	}
	return result
}

// Unflatten rebuilds nested maps from dot-notation keys for writing.
func Unflatten(data map[string]any) map[string]any {
	root := make(map[string]any)
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = data[key]
	}
	return root
}
