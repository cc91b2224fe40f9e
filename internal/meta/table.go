// Package meta reads per-model override tables from YAML or TOML files.
package meta

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/piecemodel/pkg/math"
)

// Format is a metadata file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// ErrUnknownFormat is returned for extensions that map to no Format.
var ErrUnknownFormat = errors.New("unknown metadata format")

// FormatForExt maps a file extension (with or without the dot) to a Format.
func FormatForExt(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// Table is a read-only key/value tree. The zero Table is invalid and answers
// every lookup with the supplied default.
type Table struct {
	values map[string]any
}

// New wraps values as a Table.
func New(values map[string]any) Table {
	return Table{values: values}
}

// Parse decodes data in the given format. The document root must be a mapping.
func Parse(data []byte, format Format) (Table, error) {
	values := make(map[string]any)

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &values)
	case FormatTOML:
		err = toml.Unmarshal(data, &values)
	default:
		return Table{}, ErrUnknownFormat
	}
	if err != nil {
		return Table{}, fmt.Errorf("parsing metadata: %w", err)
	}

	return Table{values: values}, nil
}

// IsValid reports whether the table holds any data source.
func (t Table) IsValid() bool {
	return t.values != nil
}

// Len returns the number of top-level keys.
func (t Table) Len() int {
	return len(t.values)
}

// KeyExists reports whether key is present.
func (t Table) KeyExists(key string) bool {
	_, ok := t.values[key]
	return ok
}

// SubTable returns the nested table under key, or an invalid Table.
func (t Table) SubTable(key string) Table {
	switch v := t.values[key].(type) {
	case map[string]any:
		return Table{values: v}
	case map[any]any:
		converted := make(map[string]any, len(v))
		for k, val := range v {
			converted[fmt.Sprint(k)] = val
		}
		return Table{values: converted}
	default:
		return Table{}
	}
}

// GetFloat returns the number under key, or def.
func (t Table) GetFloat(key string, def float32) float32 {
	if f, ok := toFloat(t.values[key]); ok {
		return f
	}
	return def
}

// GetFloat3 returns a three element list under key, or def.
func (t Table) GetFloat3(key string, def math.Vec3) math.Vec3 {
	list, ok := t.values[key].([]any)
	if !ok || len(list) < 3 {
		return def
	}

	var out [3]float32
	for i := range out {
		f, ok := toFloat(list[i])
		if !ok {
			return def
		}
		out[i] = f
	}
	return math.Vec3{X: out[0], Y: out[1], Z: out[2]}
}

// GetInt returns the integer under key, or def. Floats are truncated.
func (t Table) GetInt(key string, def int) int {
	switch v := t.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// GetBool returns the boolean under key, or def.
func (t Table) GetBool(key string, def bool) bool {
	if b, ok := t.values[key].(bool); ok {
		return b
	}
	return def
}

// GetString returns the string under key, or def.
func (t Table) GetString(key string, def string) string {
	if s, ok := t.values[key].(string); ok {
		return s
	}
	return def
}

func toFloat(v any) (float32, bool) {
	switch n := v.(type) {
	case float64:
		return float32(n), true
	case float32:
		return n, true
	case int:
		return float32(n), true
	case int64:
		return float32(n), true
	case uint64:
		return float32(n), true
	default:
		return 0, false
	}
}
