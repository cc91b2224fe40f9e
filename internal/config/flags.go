package config

import (
	"flag"
	"strings"
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagTexDir = flag.String("texdir", "", "Texture directory")
	flagRoots  stringList
)

func init() {
	flag.Var(&flagRoots, "root", "Data root directory (repeatable, later roots win)")
}

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if len(flagRoots) > 0 {
		cfg.Data.Roots = append([]string(nil), flagRoots...)
	}
	if *flagTexDir != "" {
		cfg.Data.TextureDir = *flagTexDir
	}
}
