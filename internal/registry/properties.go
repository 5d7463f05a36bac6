package registry

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/spf13/cast"
)

// Properties is a node's property map with typed accessors. Every accessor
// error wraps ErrInvalidProperty and names the offending key.
type Properties map[string]any

// Has reports whether key is set.
func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns a string property, or def when unset.
func (p Properties) String(key, def string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", p.invalid(key, "must be a string, got %T", v)
	}
	return s, nil
}

// RequiredString returns a non-empty string property.
func (p Properties) RequiredString(key string) (string, error) {
	if !p.Has(key) {
		return "", p.invalid(key, "is required")
	}
	s, err := p.String(key, "")
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", p.invalid(key, "must not be empty")
	}
	return s, nil
}

// Int returns an integer property, or def when unset. Numeric strings are
// accepted; fractional numbers and booleans are not.
func (p Properties) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	if _, isBool := v.(bool); isBool {
		return 0, p.invalid(key, "must be an integer, got a boolean")
	}
	if f, isFloat := v.(float64); isFloat && f != math.Trunc(f) {
		return 0, p.invalid(key, "must be a whole number, got %v", f)
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, p.invalid(key, "must be an integer: %v", err)
	}
	return i, nil
}

// Bool returns a boolean property, or def when unset.
func (p Properties) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, p.invalid(key, "must be a boolean: %v", err)
	}
	return b, nil
}

// Duration returns a required duration property. Numbers are read as
// milliseconds; strings use Go duration syntax ("1.5s", "250ms").
func (p Properties) Duration(key string) (time.Duration, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, p.invalid(key, "is required")
	}

	var d time.Duration
	switch val := v.(type) {
	case int64, float64:
		ms, err := cast.ToFloat64E(val)
		if err != nil {
			return 0, p.invalid(key, "must be a duration: %v", err)
		}
		d = time.Duration(ms * float64(time.Millisecond))
	case string:
		parsed, err := cast.ToDurationE(val)
		if err != nil {
			return 0, p.invalid(key, "must be a duration: %v", err)
		}
		d = parsed
	default:
		return 0, p.invalid(key, "must be a duration, got %T", v)
	}

	if d < 0 {
		return 0, p.invalid(key, "must not be negative, got %s", d)
	}
	return d, nil
}

// Unknown returns the keys of p that are not in allowed, in sorted order.
func (p Properties) Unknown(allowed []string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, k := range allowed {
		set[k] = struct{}{}
	}
	var unknown []string
	for k := range p {
		if _, ok := set[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func (p Properties) invalid(key, format string, args ...any) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidProperty, key, fmt.Sprintf(format, args...))
}
