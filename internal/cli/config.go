package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// fileConfig is the --config TOML file. Every key is optional and
// supplies the default of the flag with the same name:
//
//	kconfig    = "kernel/kconfig/Kconfig.cue"
//	board      = "qemu_riscv64"
//	build_type = "debug"
//	output     = "out/consts.rs"
//	dialect    = "rust"
//	db         = "out/kgen.db"
//
// Relative paths are taken relative to the config file's directory.
type fileConfig struct {
	Kconfig   string `toml:"kconfig"`
	Board     string `toml:"board"`
	BuildType string `toml:"build_type"`
	Output    string `toml:"output"`
	Dialect   string `toml:"dialect"`
	DB        string `toml:"db"`
	Format    string `toml:"format"`
	Verbose   bool   `toml:"verbose"`
}

var pathKeys = map[string]bool{"kconfig": true, "output": true, "db": true}

// loadFileConfig reads path and returns flag name -> value for every key
// the file defines.
func loadFileConfig(path string) (map[string]string, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}

	values := make(map[string]string)
	strs := []struct {
		key string
		val string
	}{
		{"kconfig", raw.Kconfig},
		{"board", raw.Board},
		{"build_type", raw.BuildType},
		{"output", raw.Output},
		{"dialect", raw.Dialect},
		{"db", raw.DB},
		{"format", raw.Format},
	}
	for _, s := range strs {
		if !meta.IsDefined(s.key) {
			continue
		}
		v := strings.TrimSpace(s.val)
		if pathKeys[s.key] && v != "" && !filepath.IsAbs(v) {
			v = filepath.Join(filepath.Dir(path), v)
		}
		values[s.key] = v
	}
	if meta.IsDefined("verbose") {
		values["verbose"] = strconv.FormatBool(raw.Verbose)
	}
	return values, nil
}

// applyFileConfig sets each value on cmd's flag of the same name unless the
// flag was given on the command line. Keys cmd has no flag for are ignored,
// so one file can serve every subcommand.
func applyFileConfig(cmd *cobra.Command, values map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f := cmd.Flags().Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		if err := cmd.Flags().Set(name, values[name]); err != nil {
			return fmt.Errorf("config key %s: %w", name, err)
		}
	}
	return nil
}
