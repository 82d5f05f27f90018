package cli

import (
	"os"

	"github.com/brandonbloom/bootimage/internal/args"
	"github.com/brandonbloom/bootimage/internal/project"
)

// loadProject uses --manifest-path when given, otherwise discovers the
// manifest from the working directory the way cargo does.
func loadProject(a *args.Args) (*project.Project, error) {
	if path, ok := a.ManifestPath(); ok {
		return project.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return project.Discover(wd)
}

// applyProjectDefaults fills in options the user left out so that cargo
// and the runner agree on what is being built.
func applyProjectDefaults(kind args.Kind, a *args.Args, proj *project.Project) error {
	if _, ok := a.Target(); !ok {
		if target := proj.Config().DefaultTarget; target != "" {
			if err := a.SetTarget(target); err != nil {
				return err
			}
		}
	}
	if kind == args.Test {
		return nil
	}
	if _, ok := a.BinName(); !ok {
		if bin := proj.DefaultBin(); bin != "" {
			if err := a.SetBinName(bin); err != nil {
				return err
			}
		}
	}
	return nil
}
