package meta

import (
	"path"
	"strings"

	"go.uber.org/zap"
)

// DefaultExtensions lists the metadata extensions tried, in order.
var DefaultExtensions = []string{".yaml", ".yml", ".toml"}

// Reader is the file access needed to locate metadata.
type Reader interface {
	Exists(name string) bool
	ReadFile(name string) ([]byte, error)
}

// Candidates returns the metadata paths tried for a model, in order. For each
// extension the full model path is tried first, then the path with the model
// extension stripped.
func Candidates(modelPath string, exts []string) []string {
	dir := path.Dir(modelPath)
	base := strings.TrimSuffix(path.Base(modelPath), path.Ext(modelPath))
	stripped := path.Join(dir, base)

	out := make([]string, 0, len(exts)*2)
	for _, ext := range exts {
		out = append(out, modelPath+ext)
		if stripped != modelPath {
			out = append(out, stripped+ext)
		}
	}
	return out
}

// Find returns the first metadata file that exists for modelPath, or "".
func Find(r Reader, modelPath string, exts []string) string {
	for _, candidate := range Candidates(modelPath, exts) {
		if r.Exists(candidate) {
			return candidate
		}
	}
	return ""
}

// LoadForModel locates and parses the metadata for modelPath. A missing or
// broken file is logged and yields an empty Table so callers fall back to
// their defaults.
func LoadForModel(r Reader, modelPath string, exts []string, log *zap.Logger) Table {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	name := Find(r, modelPath, exts)
	if name == "" {
		log.Info("no meta-file, using defaults", zap.String("model", modelPath))
		return Table{}
	}

	format, err := FormatForExt(path.Ext(name))
	if err != nil {
		log.Error("unsupported meta-file, using defaults", zap.String("file", name), zap.Error(err))
		return Table{}
	}

	data, err := r.ReadFile(name)
	if err != nil {
		log.Error("reading meta-file, using defaults", zap.String("file", name), zap.Error(err))
		return Table{}
	}

	t, err := Parse(data, format)
	if err != nil {
		log.Error("parsing meta-file, using defaults", zap.String("file", name), zap.Error(err))
		return Table{}
	}

	log.Info("found valid model metadata", zap.String("file", name))
	return t
}
