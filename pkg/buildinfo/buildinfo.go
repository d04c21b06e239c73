// Package buildinfo contains build information, and the version subcommand
// printing it.
//
// Build information may be set during compilation by passing
// -ldflags "-X src.crush.sh/pkg/buildinfo.VersionSuffix=value" to "go build".
package buildinfo

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"src.crush.sh/pkg/prog"
)

// Version identifies the version of crush-graph. On development commits, it
// identifies the next release.
const Version = "v0.1.0"

// VersionSuffix is appended to Version to build the full version string.
var VersionSuffix = "-dev.unknown"

// Reproducible identifies whether the build is reproducible.
var Reproducible = "false"

// Info is the build information shown by the version subcommand.
type Info struct {
	Version      string `yaml:"version"`
	GoVersion    string `yaml:"goversion"`
	Reproducible bool   `yaml:"reproducible"`
}

// Value returns the build information of the running binary.
func Value() Info {
	return Info{Version + VersionSuffix, runtime.Version(), Reproducible == "true"}
}

// Program is the version subcommand.
type Program struct{}

func (Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if len(args) == 0 || args[0] != "version" {
		return prog.ErrNotSuitable
	}
	if len(args) != 1 {
		return prog.BadUsage("version takes no arguments")
	}
	info := Value()
	if f.YAML {
		data, err := yaml.Marshal(info)
		if err != nil {
			return err
		}
		_, err = fds[1].Write(data)
		return err
	}
	fmt.Fprintln(fds[1], "Version:", info.Version)
	fmt.Fprintln(fds[1], "Go version:", info.GoVersion)
	fmt.Fprintln(fds[1], "Reproducible build:", info.Reproducible)
	return nil
}
