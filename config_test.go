package rcaide

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/leadsgroup/RCAIDE-UIUC-sub000/spectral"
)

// withConfig restores the library configuration once the test is over.
func withConfig(t *testing.T) {
	t.Helper()
	loaded, prev := cfgLoaded, config
	t.Cleanup(func() {
		cfgLoaded = loaded
		config = prev
	})
}

func TestLoadConfig(t *testing.T) {
	withConfig(t)
	dir := t.TempDir()
	conf := `[numerics]
control_points = 8
discretization = "linear"
tolerance = 1e-6

[general]
output_path = "/tmp/rcaide"
verbose = true
`
	if err := os.WriteFile(filepath.Join(dir, "conf.toml"), []byte(conf), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadConfig(dir); err != nil {
		t.Fatal(err)
	}
	n := NewNumerics()
	if n.NumberOfControlPoints != 8 || n.Discretization != spectral.LinearKind || n.ToleranceSolution != 1e-6 || n.MaxEvaluations != 0 {
		t.Fatalf("numerics not configured: %+v", n)
	}
	if OutputDir() != "/tmp/rcaide" {
		t.Fatalf("output dir %s", OutputDir())
	}
}

func TestConfigDefaults(t *testing.T) {
	withConfig(t)
	cfgLoaded = true
	config = defaultConfig()
	n := NewNumerics()
	if n.NumberOfControlPoints != 16 || n.Discretization != spectral.ChebyshevKind || n.ToleranceSolution != 1e-8 {
		t.Fatalf("unexpected defaults %+v", n)
	}
	if OutputDir() != "." {
		t.Fatalf("output dir %s", OutputDir())
	}
}

func TestInvalidConfig(t *testing.T) {
	withConfig(t)
	if err := LoadConfig(t.TempDir()); err == nil {
		t.Fatal("missing conf.toml should fail")
	}
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "conf.toml"), []byte("[numerics]\ncontrol_points = 0\n"), 0o644)
	if err := LoadConfig(dir); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected an invalid argument, got %v", err)
	}
	os.WriteFile(filepath.Join(dir, "conf.toml"), []byte("[numerics]\ndiscretization = \"legendre\"\n"), 0o644)
	if err := LoadConfig(dir); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected an invalid argument, got %v", err)
	}
}
