package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/brandonbloom/bootimage/internal/args"
)

func execute(t *testing.T, argv ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{}, argv...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// newKernelProject writes a Cargo.toml into a temp dir and changes into it.
func newKernelProject(t *testing.T, metadata string) string {
	t.Helper()
	t.Setenv("CARGO_TARGET_DIR", "")
	t.Setenv(envLog, "")
	dir := t.TempDir()
	manifest := "[package]\nname = \"kernel\"\nversion = \"0.1.0\"\n\n[package.metadata.bootimage]\n" + metadata
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	chdir(t, dir)
	return dir
}

// fakeTool writes a shell script that records its arguments one per line
// into record and exits with code.
func fakeTool(t *testing.T, dir, name, record string, code int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unsupported on windows")
	}
	path := filepath.Join(dir, name)
	script := fmt.Sprintf("#!/bin/sh\nprintf '%%s\\n' \"$@\" > %q\nexit %d\n", record, code)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v (%T), want *ExitError", err, err)
	}
	return exitErr.Code
}

func TestHelpPages(t *testing.T) {
	cases := []struct {
		argv []string
		want string
	}{
		{[]string{"--help"}, "bootimage <SUBCOMMAND> [BUILD_OPTS]"},
		{[]string{"-h"}, "SUBCOMMANDS:"},
		{[]string{"build", "--help"}, "bootimage build [BUILD_OPTS]"},
		{[]string{"run", "-h"}, "RUN_OPTS:"},
		{[]string{"test", "--release", "--help"}, "TEST_OPTS:"},
	}
	for _, tc := range cases {
		stdout, _, err := execute(t, tc.argv...)
		if err != nil {
			t.Fatalf("execute(%q) returned error: %v", tc.argv, err)
		}
		if !strings.Contains(stdout, tc.want) {
			t.Fatalf("execute(%q) stdout missing %q:\n%s", tc.argv, tc.want, stdout)
		}
	}
}

func TestHelpColumnsAligned(t *testing.T) {
	stdout, _, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	var columns []int
	for _, line := range strings.Split(stdout, "\n") {
		for _, desc := range []string{"Create a bootable disk image", "Build and run a disk image", "Runs integration tests"} {
			if strings.HasSuffix(line, desc) {
				columns = append(columns, strings.Index(line, desc))
			}
		}
	}
	if len(columns) != 3 || columns[0] != columns[1] || columns[1] != columns[2] {
		t.Fatalf("subcommand descriptions not aligned: %v\n%s", columns, stdout)
	}
}

func TestVersion(t *testing.T) {
	for _, argv := range [][]string{{"--version"}, {"build", "--version"}} {
		stdout, _, err := execute(t, argv...)
		if err != nil {
			t.Fatalf("execute(%q) returned error: %v", argv, err)
		}
		if !strings.HasPrefix(stdout, "bootimage version ") {
			t.Fatalf("execute(%q) stdout = %q", argv, stdout)
		}
	}
}

func TestNoSubcommand(t *testing.T) {
	for _, argv := range [][]string{{}, {"help"}, {"bulid"}} {
		stdout, stderr, err := execute(t, argv...)
		if code := exitCode(t, err); code != 1 {
			t.Fatalf("exit code = %d, want 1", code)
		}
		if stdout != "" {
			t.Fatalf("stdout = %q, want empty", stdout)
		}
		if !strings.Contains(stderr, noSubcommandHint) {
			t.Fatalf("stderr missing hint:\n%s", stderr)
		}
		var buf bytes.Buffer
		if got := ReportError(&buf, err); got != 1 || buf.Len() != 0 {
			t.Fatalf("ReportError = %d, %q; want 1 and no output", got, buf.String())
		}
	}
}

func TestUsageErrors(t *testing.T) {
	cases := []struct {
		name string
		argv []string
		want error
	}{
		{"duplicateBin", []string{"build", "--bin", "a", "--bin", "b"}, args.ErrDuplicateOption},
		{"testBin", []string{"test", "--bin", "a"}, args.ErrIllegalCombination},
		{"missingManifest", []string{"build", "--manifest-path", "/nonexistent/Cargo.toml"}, args.ErrInvalidPath},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.argv...)
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
			if code := exitCode(t, err); code != usageExitCode {
				t.Fatalf("exit code = %d, want %d", code, usageExitCode)
			}
		})
	}
}

func TestBuildDryRunInjectsDefaults(t *testing.T) {
	newKernelProject(t, "default-target = \"x86_64-kernel.json\"\n")
	t.Setenv(envDryRun, "1")
	t.Setenv(envCargo, "")

	_, stderr, err := execute(t, "build", "--release", "--features", "serial", "--", "ignored")
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	want := "cargo build --release --features serial --target x86_64-kernel.json --bin kernel"
	if !strings.Contains(stderr, want) {
		t.Fatalf("stderr missing %q:\n%s", want, stderr)
	}
	if !strings.Contains(stderr, "Building") {
		t.Fatalf("stderr missing status verb:\n%s", stderr)
	}
}

func TestBuildDryRunKeepsUserOptions(t *testing.T) {
	newKernelProject(t, "default-target = \"x86_64-kernel.json\"\n")
	t.Setenv(envDryRun, "1")
	t.Setenv(envCargo, "")

	_, stderr, err := execute(t, "build", "--target=x86_64-unknown-none", "--bin=loader")
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if !strings.Contains(stderr, "cargo build --target=x86_64-unknown-none --bin=loader\n") {
		t.Fatalf("defaults must not override user options:\n%s", stderr)
	}
}

func TestRunDryRunPlansRunner(t *testing.T) {
	newKernelProject(t, "default-target = \"x86_64-kernel.json\"\nrun-args = [\"-serial\", \"stdio\"]\n")
	t.Setenv(envDryRun, "1")
	t.Setenv(envCargo, "")

	_, stderr, err := execute(t, "run", "--", "-m", "512M")
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	image := filepath.Join("x86_64-kernel", "debug", "bootimage-kernel.bin")
	for _, want := range []string{"cargo build --target x86_64-kernel.json --bin kernel", "qemu-system-x86_64 -drive", image, "-serial stdio -m 512M"} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestBuildExecutesCargo(t *testing.T) {
	dir := newKernelProject(t, "")
	t.Setenv(envDryRun, "")
	record := filepath.Join(dir, "cargo-args")
	t.Setenv(envCargo, fakeTool(t, dir, "fake-cargo", record, 0))

	_, stderr, err := execute(t, "build", "-v")
	if err != nil {
		t.Fatalf("execute returned error: %v\n%s", err, stderr)
	}
	got := readLines(t, record)
	want := []string{"build", "-v", "--bin", "kernel"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("cargo args = %q, want %q", got, want)
	}
	if !strings.Contains(stderr, "Finished") {
		t.Fatalf("stderr missing Finished line:\n%s", stderr)
	}
}

func TestBuildPropagatesCargoFailure(t *testing.T) {
	dir := newKernelProject(t, "")
	t.Setenv(envDryRun, "")
	t.Setenv(envCargo, fakeTool(t, dir, "fake-cargo", filepath.Join(dir, "cargo-args"), 101))

	_, _, err := execute(t, "build")
	if code := exitCode(t, err); code != 101 {
		t.Fatalf("exit code = %d, want 101", code)
	}
	var buf bytes.Buffer
	if got := ReportError(&buf, err); got != 101 || !strings.Contains(buf.String(), "exited with status 101") {
		t.Fatalf("ReportError = %d, %q", got, buf.String())
	}
}

func TestRunExecutesRunnerAfterBuild(t *testing.T) {
	dir := t.TempDir()
	runnerRecord := filepath.Join(dir, "runner-args")
	runner := fakeTool(t, dir, "fake-qemu", runnerRecord, 0)
	newKernelProject(t, fmt.Sprintf("run-command = [%q, \"-drive\", \"format=raw,file={}\"]\n", runner))
	t.Setenv(envDryRun, "")
	t.Setenv(envCargo, fakeTool(t, dir, "fake-cargo", filepath.Join(dir, "cargo-args"), 0))

	if _, stderr, err := execute(t, "run", "--release", "--", "-nographic"); err != nil {
		t.Fatalf("execute returned error: %v\n%s", err, stderr)
	}
	got := readLines(t, runnerRecord)
	if len(got) != 3 || got[0] != "-drive" || got[2] != "-nographic" {
		t.Fatalf("runner args = %q", got)
	}
	wantImage := filepath.Join("target", "release", "bootimage-kernel.bin")
	if !strings.HasPrefix(got[1], "format=raw,file=") || !strings.HasSuffix(got[1], wantImage) {
		t.Fatalf("runner image arg = %q, want suffix %q", got[1], wantImage)
	}
}

func TestTestPassesArgsToHarness(t *testing.T) {
	dir := newKernelProject(t, "test-args = [\"-display\", \"none\"]\n")
	t.Setenv(envDryRun, "")
	record := filepath.Join(dir, "cargo-args")
	t.Setenv(envCargo, fakeTool(t, dir, "fake-cargo", record, 0))

	if _, stderr, err := execute(t, "test", "--", "--nocapture"); err != nil {
		t.Fatalf("execute returned error: %v\n%s", err, stderr)
	}
	got := strings.Join(readLines(t, record), " ")
	if got != "test -- -display none --nocapture" {
		t.Fatalf("cargo args = %q", got)
	}
}

func TestTestPropagatesFailingTests(t *testing.T) {
	dir := newKernelProject(t, "")
	t.Setenv(envDryRun, "")
	t.Setenv(envCargo, fakeTool(t, dir, "fake-cargo", filepath.Join(dir, "cargo-args"), 101))

	_, _, err := execute(t, "test")
	if code := exitCode(t, err); code != 101 {
		t.Fatalf("exit code = %d, want 101", code)
	}
}

func TestRelativeManifestPathResolvesFromWorkingDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unsupported on windows")
	}
	t.Setenv("CARGO_TARGET_DIR", "")
	t.Setenv(envLog, "")
	t.Setenv(envDryRun, "")
	parent := t.TempDir()
	kernel := filepath.Join(parent, "kernel")
	if err := os.Mkdir(kernel, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := "[package]\nname = \"kernel\"\nversion = \"0.1.0\"\n"
	if err := os.WriteFile(filepath.Join(kernel, "Cargo.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	tools := t.TempDir()
	record := filepath.Join(tools, "manifest-check")
	cargo := filepath.Join(tools, "fake-cargo")
	script := fmt.Sprintf("#!/bin/sh\nif [ -f kernel/Cargo.toml ]; then echo found > %q; else echo missing > %q; fi\n", record, record)
	if err := os.WriteFile(cargo, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv(envCargo, cargo)
	chdir(t, parent)

	if _, stderr, err := execute(t, "build", "--manifest-path", "kernel/Cargo.toml"); err != nil {
		t.Fatalf("execute returned error: %v\n%s", err, stderr)
	}
	if got := readLines(t, record); len(got) != 1 || got[0] != "found" {
		t.Fatalf("cargo could not see kernel/Cargo.toml from its working directory: %q", got)
	}
}

func TestBuildOutsideProject(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv(envDryRun, "1")

	_, _, err := execute(t, "build")
	if err == nil {
		t.Fatal("expected error outside a cargo project")
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Fatalf("project errors should not carry an exit code: %v", err)
	}
}

func TestReportErrorPlain(t *testing.T) {
	var buf bytes.Buffer
	if got := ReportError(&buf, errors.New("boom")); got != 1 {
		t.Fatalf("ReportError = %d, want 1", got)
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("output = %q", buf.String())
	}
	if got := ReportError(&buf, nil); got != 0 {
		t.Fatalf("ReportError(nil) = %d, want 0", got)
	}
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv(envCargo, " /opt/cargo ")
	t.Setenv(envDryRun, "true")
	t.Setenv(envLog, "DEBUG")
	s := settingsFromEnv()
	if s.cargo != "/opt/cargo" || !s.dryRun || s.logLevel.String() != "DEBUG" {
		t.Fatalf("settings = %+v", s)
	}

	t.Setenv(envCargo, "")
	t.Setenv(envDryRun, "0")
	t.Setenv(envLog, "chatty")
	s = settingsFromEnv()
	if s.cargo != "cargo" || s.dryRun || s.logLevel.String() != "WARN" {
		t.Fatalf("settings = %+v", s)
	}
}
