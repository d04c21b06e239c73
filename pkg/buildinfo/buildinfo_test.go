package buildinfo_test

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	. "src.crush.sh/pkg/buildinfo"
	"src.crush.sh/pkg/prog/progtest"
)

func TestProgram(t *testing.T) {
	info := Value()
	r := progtest.Run(Program{}, "version")
	want := fmt.Sprintf("Version: %s\nGo version: %s\nReproducible build: false\n",
		info.Version, runtime.Version())
	if r.Exit != 0 || r.Stdout != want {
		t.Errorf("version -> %+v, want stdout %q", r, want)
	}

	r = progtest.Run(Program{}, "-yaml", "version")
	var got Info
	if err := yaml.Unmarshal([]byte(r.Stdout), &got); err != nil {
		t.Fatalf("output %q is not YAML: %v", r.Stdout, err)
	}
	if diff := cmp.Diff(info, got); diff != "" {
		t.Errorf("-yaml version (-want +got):\n%s", diff)
	}

	if r := progtest.Run(Program{}, "version", "x"); r.Exit != 2 {
		t.Errorf("version x exits with %d", r.Exit)
	}
	if r := progtest.Run(Program{}); r.Exit != 2 {
		t.Errorf("no subcommand exits with %d", r.Exit)
	}
}

func TestValue(t *testing.T) {
	if v := Value().Version; v != Version+VersionSuffix {
		t.Errorf("Version = %q", v)
	}
}
