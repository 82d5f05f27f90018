package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// ImagePlaceholder is replaced with the disk image path in run-command.
const ImagePlaceholder = "{}"

// DefaultTestTimeout bounds a test run when test-timeout is unset.
const DefaultTestTimeout = 300 * time.Second

// Manifest is the subset of Cargo.toml that bootimage reads.
type Manifest struct {
	Package *Package `toml:"package"`
	Bins    []Bin    `toml:"bin"`
}

// Package mirrors the [package] table.
type Package struct {
	Name     string   `toml:"name"`
	Metadata Metadata `toml:"metadata"`
}

// Metadata mirrors [package.metadata]; other tools' tables are ignored.
type Metadata struct {
	Bootimage Config `toml:"bootimage"`
}

// Bin mirrors a [[bin]] entry.
type Bin struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// Config captures the user editable settings stored in
// [package.metadata.bootimage].
type Config struct {
	DefaultTarget string   `toml:"default-target"`
	BuildCommand  []string `toml:"build-command"`
	RunCommand    []string `toml:"run-command"`
	RunArgs       []string `toml:"run-args"`
	TestArgs      []string `toml:"test-args"`
	TestTimeout   int      `toml:"test-timeout"`
}

var (
	// ErrMissingPackage indicates the manifest has no [package] table, as in a virtual workspace.
	ErrMissingPackage = errors.New("manifest has no [package] section; pass --manifest-path for a package")
	// ErrEmptyBuildCommand indicates build-command was set to an empty list.
	ErrEmptyBuildCommand = errors.New("package.metadata.bootimage.build-command must not be empty")
	// ErrEmptyRunCommand indicates run-command was set to an empty list.
	ErrEmptyRunCommand = errors.New("package.metadata.bootimage.run-command must not be empty")
	// ErrMissingImagePlaceholder indicates run-command never mentions the image.
	ErrMissingImagePlaceholder = errors.New("package.metadata.bootimage.run-command must contain a `{}` placeholder for the disk image")
)

func defaultRunCommand() []string {
	return []string{"qemu-system-x86_64", "-drive", "format=raw,file=" + ImagePlaceholder}
}

// Default returns the settings used when the manifest has no bootimage table.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.BuildCommand == nil {
		c.BuildCommand = []string{"build"}
	}
	if c.RunCommand == nil {
		c.RunCommand = defaultRunCommand()
	}
	if c.TestTimeout <= 0 {
		c.TestTimeout = int(DefaultTestTimeout / time.Second)
	}
}

// Validate ensures the configuration can guide bootimage's behavior.
func (c Config) Validate() error {
	if len(c.BuildCommand) == 0 {
		return ErrEmptyBuildCommand
	}
	if len(c.RunCommand) == 0 {
		return ErrEmptyRunCommand
	}
	if !slices.ContainsFunc(c.RunCommand, func(arg string) bool {
		return strings.Contains(arg, ImagePlaceholder)
	}) {
		return ErrMissingImagePlaceholder
	}
	return nil
}

// TestTimeoutDuration returns test-timeout as a duration.
func (c Config) TestTimeoutDuration() time.Duration {
	return time.Duration(c.TestTimeout) * time.Second
}

// Bootimage returns the bootimage settings of the package. Parse never
// returns a manifest without a package; a zero Manifest built by hand
// yields Default().
func (m Manifest) Bootimage() Config {
	if m.Package == nil {
		return Default()
	}
	return m.Package.Metadata.Bootimage
}

// Load reads a Cargo.toml from disk and applies bootimage defaults.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	return Parse(path, data)
}

// Parse decodes manifest data; path is used for error messages only.
func Parse(path string, data []byte) (Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if m.Package == nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrMissingPackage)
	}
	cfg := &m.Package.Metadata.Bootimage
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
