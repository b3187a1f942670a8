package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anirudhraja/protokit/internal/dump"
	"github.com/anirudhraja/protokit/internal/testmsg"
	"github.com/anirudhraja/protokit/wire"
)

func TestLoadDumpConfigDefaultsAndOverrides(t *testing.T) {
	cfg, err := loadDumpConfig(filepath.Join("testdata", "protodump.toml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MaxDepth != 3 {
		t.Fatalf("unexpected max depth: %d", cfg.MaxDepth)
	}
	if !cfg.GRPCFrames {
		t.Fatalf("expected grpc frames enabled")
	}
	if cfg.Parallel != 2 {
		t.Fatalf("unexpected parallel: %d", cfg.Parallel)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel)
	}
	if cfg.JSON {
		t.Fatalf("json should keep its default")
	}
}

func TestLoadDumpConfigRejectsBadInput(t *testing.T) {
	if _, err := loadDumpConfig(filepath.Join("testdata", "unknown_key.toml")); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if _, err := loadDumpConfig(filepath.Join("testdata", "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("parallel = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadDumpConfig(path); err == nil {
		t.Fatal("expected error for parallel = 0")
	}
}

func writeMessage(t *testing.T, dir, name string, m wire.Encodable, framed bool) string {
	t.Helper()
	data, err := wire.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if framed {
		data = append(dump.EncodeFrame(dump.Frame{Data: data}),
			dump.EncodeFrame(dump.Frame{Flags: dump.FlagTrailer, Data: []byte("grpc-status: 0\r\n")})...)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	t.Setenv("PROTOKIT_LOG_LEVEL", "off")
	dir := t.TempDir()
	first := writeMessage(t, dir, "first.bin", &testmsg.Leaf{Name: "one", Value: 1}, false)
	second := writeMessage(t, dir, "second.bin", &testmsg.Leaf{Name: "two"}, false)

	var out strings.Builder
	if err := run([]string{first, second}, strings.NewReader(""), &out); err != nil {
		t.Fatal(err)
	}
	expected := "== " + first + " ==\n1: \"one\"\n2: 2\n== " + second + " ==\n1: \"two\"\n"
	if out.String() != expected {
		t.Errorf("expected %q, got %q", expected, out.String())
	}
}

func TestRunFramesFromStdin(t *testing.T) {
	t.Setenv("PROTOKIT_LOG_LEVEL", "off")
	path := writeMessage(t, t.TempDir(), "framed.bin", &testmsg.Leaf{Name: "framed"}, true)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	if err := run([]string{"-grpc-frames"}, strings.NewReader(string(data)), &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "# frame 0\n1: \"framed\"\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunReportsFailingInput(t *testing.T) {
	t.Setenv("PROTOKIT_LOG_LEVEL", "off")
	path := filepath.Join(t.TempDir(), "broken.bin")
	if err := os.WriteFile(path, []byte{0x08}, 0o644); err != nil {
		t.Fatal(err)
	}

	err := run([]string{path}, strings.NewReader(""), &strings.Builder{})
	if err == nil || !strings.Contains(err.Error(), "broken.bin") {
		t.Fatalf("expected error naming the input, got %v", err)
	}
}
