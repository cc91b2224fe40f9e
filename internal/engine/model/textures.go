package model

import (
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/piecemodel/internal/meta"
	"github.com/Faultbox/piecemodel/internal/vfs"
	"github.com/Faultbox/piecemodel/pkg/scene"
)

// materialTextureSlots are checked in order on the first material.
var materialTextureSlots = []scene.TextureType{
	scene.TextureDiffuse,
	scene.TextureUnknown,
	scene.TextureSpecular,
}

// TextureFinder resolves the two model textures.
//
// Tex1 holds diffuse color and team color, Tex2 holds glow, reflectivity and
// alpha.
type TextureFinder struct {
	fs         vfs.FileSystem
	textureDir string
	log        *zap.Logger
}

// NewTextureFinder creates a finder searching textureDir on fs.
func NewTextureFinder(fs vfs.FileSystem, textureDir string, log *zap.Logger) *TextureFinder {
	return &TextureFinder{fs: fs, textureDir: textureDir, log: log}
}

// Find sets Tex1, Tex2, FlipTexY and InvertTexAlpha on m.
func (f *TextureFinder) Find(m *Model, sc *scene.Scene, tbl meta.Table, modelPath string) {
	modelDir := path.Dir(modelPath)
	modelName := strings.TrimSuffix(path.Base(modelPath), path.Ext(modelPath))

	if len(sc.Materials) > 0 {
		mat := sc.Materials[0]
		for _, slot := range materialTextureSlots {
			if tex := mat.Texture(slot, 0); tex != "" {
				m.Tex1 = tex
				break
			}
		}
	}

	m.Tex1 = tbl.GetString("tex1", m.Tex1)
	m.Tex2 = tbl.GetString("tex2", m.Tex2)

	quoted := vfs.QuoteMeta(modelName)
	if m.Tex1 == "" {
		m.Tex1 = f.firstMatch(f.textureDir, quoted+".*")
	}
	if m.Tex2 == "" {
		m.Tex2 = f.firstMatch(f.textureDir, quoted+"2.*")
	}
	if m.Tex1 == "" {
		m.Tex1 = f.firstMatch(modelDir, "diffuse.*")
	}

	m.Tex1 = f.correctPath(m.Tex1, modelDir)
	m.Tex2 = f.correctPath(m.Tex2, modelDir)

	m.FlipTexY = tbl.GetBool("fliptextures", true)
	m.InvertTexAlpha = tbl.GetBool("invertteamcolor", true)

	if m.Tex1 == "" {
		f.log.Warn("no primary texture found", zap.String("model", modelPath))
	}
}

func (f *TextureFinder) firstMatch(dir, pattern string) string {
	if f.fs == nil {
		return ""
	}
	files := f.fs.FindFiles(dir, pattern)
	if len(files) == 0 {
		return ""
	}
	return path.Base(files[0])
}

// correctPath prefixes tex with the texture dir or the model dir when only
// the prefixed path exists.
func (f *TextureFinder) correctPath(tex, modelDir string) string {
	if tex == "" || f.fs == nil || f.fs.Exists(tex) {
		return tex
	}
	if p := path.Join(f.textureDir, tex); f.fs.Exists(p) {
		return p
	}
	if p := path.Join(modelDir, tex); f.fs.Exists(p) {
		return p
	}
	return tex
}
