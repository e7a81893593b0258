// Package config loads the single JSON configuration document (spec.md
// §6) into a *model.Registry, following the teacher's builder-registry
// pattern for per-type construction (services/hal/registry.go
// RegisterBuilder/findBuilder) and its dynamic tinyjson.Raw traversal
// (services/config/config.go) rather than struct-tag unmarshaling,
// since the accessory array is heterogeneous by service-type tag.
package config

import (
	"errors"
	"fmt"

	"github.com/andreyvit/tinyjson"
)

// obj/arr are the two shapes tinyjson.Raw.Value() hands back for JSON
// objects/arrays; every accessor below defends against the wrong shape
// rather than panicking, since a malformed config must fail boot
// cleanly (errcode.ConfigInvalid), not crash it.
type obj = map[string]any
type arr = []any

func decodeDocument(raw []byte) (obj, error) {
	r := tinyjson.Raw(raw)
	val := r.Value()
	if err := r.EnsureEOF(); err != nil {
		return nil, fmt.Errorf("config: trailing data: %w", err)
	}
	m, ok := val.(obj)
	if !ok {
		return nil, errors.New("config: top level is not a JSON object")
	}
	return m, nil
}

func asObj(v any) (obj, bool) {
	m, ok := v.(obj)
	return m, ok
}

func asArr(v any) (arr, bool) {
	a, ok := v.(arr)
	return a, ok
}

func asString(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func asBool(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func asFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return def
}

func asInt(v any, def int) int {
	return int(asFloat(v, float64(def)))
}

func asBytes(v any, def []byte) []byte {
	if s, ok := v.(string); ok {
		return []byte(s)
	}
	return def
}
