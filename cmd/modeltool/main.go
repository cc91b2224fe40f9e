// modeltool is a CLI utility for inspecting piece models.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/piecemodel/internal/assets"
	"github.com/Faultbox/piecemodel/internal/config"
	"github.com/Faultbox/piecemodel/internal/engine/gpu"
	"github.com/Faultbox/piecemodel/internal/engine/model"
	"github.com/Faultbox/piecemodel/internal/importer"
	"github.com/Faultbox/piecemodel/internal/logger"
	"github.com/Faultbox/piecemodel/internal/vfs"
	"github.com/Faultbox/piecemodel/pkg/math"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		cmdInfo(args)
	case "pieces", "tree":
		cmdPieces(args)
	case "dump":
		cmdDump(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`modeltool - piece model inspector

Usage:
  modeltool [flags] <command> <model>...

Commands:
  info <model>...    Show model summary (several models load in parallel)
  pieces <model>     Show the piece tree with offsets and volumes
  dump <model>       Dump the model as YAML
  config [file|user] Print the effective config, or save it to a file or
                     the per-user config location

Flags:
  -config <file>     Config file
  -root <dir>        Data root (repeatable, later roots win)
  -texdir <dir>      Texture directory
  -debug             Debug logging

Examples:
  modeltool info objects/tank.glb
  modeltool -root base -root mods pieces objects/tank.glb
  modeltool dump objects/tank.glb > tank.yaml
  modeltool -root base -root mods config user`)
}

// setup loads config, initializes logging and returns a model manager.
func setup(quiet bool) *assets.Manager {
	cfg := loadConfig()

	if err := logger.InitWithOptions(logOptions(cfg, quiet)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fs := vfs.NewLayered()
	for _, root := range cfg.Data.Roots {
		fs.Add(vfs.NewDirFS(root))
	}
	logger.Section(logger.SectionTool).Debug("data roots", zap.Strings("roots", cfg.Data.Roots))

	opts := model.DefaultOptions()
	opts.TextureDir = cfg.Data.TextureDir
	if len(cfg.Model.MetaExtensions) > 0 {
		opts.MetaExtensions = cfg.Model.MetaExtensions
	}

	parser := model.NewParser(importer.NewGLTF(fs), fs, opts)
	mgr := assets.NewManager(parser)
	mgr.Limit = cfg.Model.Concurrency
	return mgr
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// logOptions maps the logging section onto logger options. Quiet commands
// keep the console at warn while the log file gets the configured level.
func logOptions(cfg *config.Config, quiet bool) logger.Options {
	opts := logger.Options{
		Level:         cfg.Logging.Level,
		Console:       os.Stdout,
		SectionLevels: cfg.Logging.Sections,
	}
	if quiet && cfg.Logging.Level != "debug" {
		opts.ConsoleLevel = "warn"
	}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	return opts
}

func cmdConfig(args []string) {
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "Usage: modeltool config [file|user]")
		os.Exit(1)
	}

	cfg := loadConfig()
	target := ""
	if len(args) == 1 {
		target = args[0]
	}

	path, err := writeConfig(cfg, target, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if path != "" {
		fmt.Printf("Saved config to %s\n", path)
	}
}

// writeConfig prints cfg to w when target is empty, saves it to the per-user
// location for "user", and to the named file otherwise. It returns the path
// written, if any.
func writeConfig(cfg *config.Config, target string, w io.Writer) (string, error) {
	switch target {
	case "":
		return "", cfg.Encode(w)
	case "user":
		return config.UserConfigPath(), cfg.Save()
	default:
		return target, cfg.SaveTo(target)
	}
}

func loadOne(mgr *assets.Manager, path string) *model.Model {
	m, err := mgr.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return m
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: modeltool info <model>...")
		os.Exit(1)
	}

	mgr := setup(true)
	defer logger.Sync()

	models, err := mgr.LoadAll(context.Background(), args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for i, m := range models {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("Model:       %s\n", m.Name)
		fmt.Printf("Pieces:      %d\n", m.NumPieces)
		fmt.Printf("Radius:      %.3f\n", m.Radius)
		fmt.Printf("Height:      %.3f\n", m.Height)
		fmt.Printf("DrawRadius:  %.3f\n", m.DrawRadius)
		fmt.Printf("MidPos:      %s\n", fmtVec(m.RelMidPos))
		fmt.Printf("Mins:        %s\n", fmtVec(m.Mins))
		fmt.Printf("Maxs:        %s\n", fmtVec(m.Maxs))
		fmt.Printf("Textures:    %q %q\n", m.Tex1, m.Tex2)
		fmt.Printf("Triangles:   %d\n", countTriangles(m))
	}
}

func cmdPieces(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: modeltool pieces <model>")
		os.Exit(1)
	}

	mgr := setup(true)
	defer logger.Sync()
	m := loadOne(mgr, args[0])

	world := gpu.WorldTransforms(m, math.Identity())
	m.Walk(func(p *model.Piece, depth int) bool {
		indent := strings.Repeat("  ", depth)
		fmt.Printf("%s%-*s offset %s world %s tris %d volume %s %s\n",
			indent, 20-len(indent), p.Name,
			fmtVec(p.Offset), fmtVec(world[p].Pos()), p.NumTriangles(),
			p.Volume.Shape, fmtVec(p.Volume.Scales))
		return true
	})

	for _, name := range orphanNames(m) {
		fmt.Printf("(orphan) %s\n", name)
	}
}

func cmdDump(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: modeltool dump <model>")
		os.Exit(1)
	}

	mgr := setup(true)
	defer logger.Sync()
	m := loadOne(mgr, args[0])

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(newModelDump(m)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	enc.Close()
}

func fmtVec(v math.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}

func countTriangles(m *model.Model) int {
	n := 0
	for _, p := range m.Pieces {
		n += p.NumTriangles()
	}
	return n
}
