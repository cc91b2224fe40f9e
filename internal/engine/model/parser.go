package model

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/piecemodel/internal/logger"
	"github.com/Faultbox/piecemodel/internal/meta"
	"github.com/Faultbox/piecemodel/internal/vfs"
	"github.com/Faultbox/piecemodel/pkg/scene"
)

// DefaultTextureDir is the directory searched for textures by model name.
const DefaultTextureDir = "unittextures"

// Importer reads a model file into a scene graph.
type Importer interface {
	Import(path string) (*scene.Scene, error)
}

// Options configures a Parser.
type Options struct {
	// TextureDir is searched for <model>.* and <model>2.* textures.
	TextureDir string
	// MetaExtensions are the metadata file extensions tried, in order.
	MetaExtensions []string
	// Logger overrides the "model" section logger.
	Logger *zap.Logger
}

// DefaultOptions returns the default parser options.
func DefaultOptions() Options {
	return Options{
		TextureDir:     DefaultTextureDir,
		MetaExtensions: meta.DefaultExtensions,
	}
}

// Parser loads models into piece hierarchies. A Parser holds no per-load
// state and may be shared by concurrent loads.
type Parser struct {
	importer Importer
	fs       vfs.FileSystem
	opts     Options
}

// NewParser creates a parser reading model files through imp and looking up
// metadata and textures on fs.
func NewParser(imp Importer, fs vfs.FileSystem, opts Options) *Parser {
	if opts.TextureDir == "" {
		opts.TextureDir = DefaultTextureDir
	}
	return &Parser{importer: imp, fs: fs, opts: opts}
}

func (p *Parser) logger() *zap.Logger {
	if p.opts.Logger != nil {
		return p.opts.Logger
	}
	return logger.Section(logger.SectionModel)
}

// Load reads the model at path together with its metadata file.
func (p *Parser) Load(path string) (*Model, error) {
	log := p.logger()
	log.Info("loading model", zap.String("path", path))

	var tbl meta.Table
	if p.fs != nil {
		tbl = meta.LoadForModel(p.fs, path, p.opts.MetaExtensions, log)
	}

	sc, err := p.importer.Import(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImport, path, err)
	}

	return p.LoadScene(path, sc, tbl)
}

// LoadScene builds a model from an already imported scene. name is the model
// path, used for texture lookup.
func (p *Parser) LoadScene(name string, sc *scene.Scene, tbl meta.Table) (*Model, error) {
	log := p.logger().With(zap.String("model", name))

	if sc == nil || sc.RootNode == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoScene, name)
	}

	log.Info("processing scene",
		zap.Int("meshes", len(sc.Meshes)),
		zap.Int("materials", len(sc.Materials)))

	m := &Model{
		Name:   name,
		Pieces: make(map[string]*Piece),
	}

	b := newBuildState(m, sc, tbl, log.Named(logger.SectionPiece))
	b.extents = CalculateMeshExtents(sc)

	NewTextureFinder(p.fs, p.opts.TextureDir, log).Find(m, sc, tbl, name)
	log.Info("textures resolved", zap.String("tex1", m.Tex1), zap.String("tex2", m.Tex2))

	log.Info("loading pieces", zap.String("root", sc.RootNode.Name))
	b.loadPiece(sc.RootNode, "")
	b.extents = nil
	m.NumPieces = len(m.Pieces)

	if err := resolveHierarchy(m, b.log); err != nil {
		return nil, err
	}
	if err := calculateDimensions(m); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	b.finalizeProperties()

	log.Debug("model properties",
		zap.Int("pieces", m.NumPieces),
		zap.Float32("radius", m.Radius),
		zap.Float32("height", m.Height),
		zap.Float32("drawRadius", m.DrawRadius),
		zap.Any("mins", m.Mins),
		zap.Any("maxs", m.Maxs))
	log.Info("model imported")

	return m, nil
}
