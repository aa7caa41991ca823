package state

import (
	"os"
	"path/filepath"
)

// ManifestFile is the package-manifest filename the engine walks
// ancestor directories for when resolving a ".drft/"-prefixed path.
const ManifestFile = "drft.yaml"

// ResolvePath resolves a configured state path per the engine's rule:
// an absolute path is used verbatim; a path beginning with ".drft/" is
// resolved relative to the nearest ancestor directory containing a
// package manifest file (falling back to the current working directory
// if none is found); any other relative path is resolved against the
// current working directory.
func ResolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}

	const prefix = ".drft" + string(filepath.Separator)
	if !hasDrftPrefix(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(cwd, path), nil
	}

	root, err := FindPackageRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, path), nil
}

func hasDrftPrefix(path string) bool {
	clean := filepath.ToSlash(path)
	return clean == ".drft" || len(clean) > 6 && clean[:6] == ".drft/"
}

// FindPackageRoot walks up from the current working directory looking
// for ManifestFile, returning the current working directory if none of
// its ancestors has one. Exported so callers outside this package (e.g.
// internal/cli's watch command) can locate the same directory without
// duplicating the walk.
func FindPackageRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	start := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}
