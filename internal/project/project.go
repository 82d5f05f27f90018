package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/brandonbloom/bootimage/internal/config"
)

// ManifestName is the file that marks a cargo package root.
const ManifestName = "Cargo.toml"

var (
	// ErrNotFound indicates that no Cargo.toml could be discovered.
	ErrNotFound = errors.New("could not find `Cargo.toml` in the current directory or any parent directory")
)

// Project encapsulates a cargo package discovered on disk.
type Project struct {
	ManifestPath string
	Root         string
	TargetDir    string
	Manifest     config.Manifest
}

// Discover walks upward from start until it finds a Cargo.toml.
func Discover(start string) (*Project, error) {
	manifest, err := locateManifest(start)
	if err != nil {
		return nil, err
	}
	return Load(manifest)
}

// Load constructs a Project from a known manifest path.
func Load(manifestPath string) (*Project, error) {
	manifestPath, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, err
	}
	m, err := config.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	root := filepath.Dir(manifestPath)
	return &Project{
		ManifestPath: manifestPath,
		Root:         root,
		TargetDir:    resolveTargetDir(root),
		Manifest:     m,
	}, nil
}

func locateManifest(start string) (string, error) {
	cur, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(cur, ManifestName)
		if isFile(candidate) {
			return candidate, nil
		}
		next := filepath.Dir(cur)
		if next == cur {
			break
		}
		cur = next
	}
	return "", ErrNotFound
}

func resolveTargetDir(root string) string {
	dir := os.Getenv("CARGO_TARGET_DIR")
	if dir == "" {
		return filepath.Join(root, "target")
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return filepath.Clean(dir)
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular()
}

// Config returns the bootimage settings from the manifest.
func (p *Project) Config() config.Config {
	return p.Manifest.Bootimage()
}

// DefaultBin picks the binary to build when --bin was not given: the only
// [[bin]] target if exactly one is declared, else the package name.
func (p *Project) DefaultBin() string {
	if len(p.Manifest.Bins) == 1 && p.Manifest.Bins[0].Name != "" {
		return p.Manifest.Bins[0].Name
	}
	if p.Manifest.Package == nil {
		return ""
	}
	return p.Manifest.Package.Name
}

// ArtifactDir is where cargo places build output for target and profile.
// An empty target means the host target.
func (p *Project) ArtifactDir(target string, release bool) string {
	profile := "debug"
	if release {
		profile = "release"
	}
	if target == "" {
		return filepath.Join(p.TargetDir, profile)
	}
	return filepath.Join(p.TargetDir, TargetStem(target), profile)
}

// ImagePath is the conventional location of the bootable disk image for bin.
func (p *Project) ImagePath(target, bin string, release bool) string {
	return filepath.Join(p.ArtifactDir(target, release), "bootimage-"+bin+".bin")
}

// TargetStem returns the directory name cargo uses for a target triple or
// a custom target specification file.
func TargetStem(target string) string {
	if strings.HasSuffix(target, ".json") {
		return strings.TrimSuffix(filepath.Base(target), ".json")
	}
	return target
}
