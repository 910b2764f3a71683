package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hugrlab/jeffc/pkg/hugr"
)

func TestConvertWritesEnvelope(t *testing.T) {
	dir := t.TempDir()
	path := writeContainer(t, dir, "ok.jeff")

	if err := runRoot(t, "convert", path); err != nil {
		t.Fatalf("convert: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "ok.hugr"))
	if err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	if !bytes.HasPrefix(out, []byte(hugr.Magic)) {
		t.Errorf("envelope starts with %q, want %q", out[:min(len(out), 4)], hugr.Magic)
	}
}

func TestConvertExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeContainer(t, dir, "ok.jeff")
	out := filepath.Join(dir, "custom.hugr")

	if err := runRoot(t, "convert", path, "-o", out); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected envelope at %s: %v", out, err)
	}
}

func TestConvertBatchToDir(t *testing.T) {
	dir := t.TempDir()
	a := writeContainer(t, dir, "a.jeff")
	b := writeContainer(t, dir, "b.jeff")
	outDir := filepath.Join(dir, "out")

	if err := runRoot(t, "convert", a, b, "-d", outDir, "--no-progress"); err != nil {
		t.Fatalf("convert batch: %v", err)
	}

	for _, name := range []string{"a.hugr", "b.hugr"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected envelope %s: %v", name, err)
		}
	}
}

func TestConvertValidationFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeAliasedContainer(t, dir, "aliased.jeff")

	err := runRoot(t, "convert", path)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(err.Error(), "failed validation") {
		t.Errorf("error = %q, want mention of failed validation", err)
	}
}

func TestConvertRejectsConflictingFlags(t *testing.T) {
	dir := t.TempDir()
	path := writeContainer(t, dir, "ok.jeff")

	err := runRoot(t, "convert", path, "-o", "x.hugr", "-d", dir)
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("error = %v, want mutually exclusive", err)
	}
}

func TestConvertRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeContainer(t, dir, "ok.jeff")

	err := runRoot(t, "convert", path, "--format", "qasm")
	if err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("error = %v, want invalid format", err)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  convertOpts
		want  string
	}{
		{"default alongside input", "circuits/bell.jeff", convertOpts{}, "circuits/bell.hugr"},
		{"explicit output wins", "bell.jeff", convertOpts{output: "out/custom.hugr", dir: "ignored"}, "out/custom.hugr"},
		{"dir joins base name", "circuits/bell.jeff", convertOpts{dir: "out"}, "out/bell.hugr"},
		{"no extension", "bell", convertOpts{}, "bell.hugr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.input, &tt.opts); got != tt.want {
				t.Errorf("outputPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
