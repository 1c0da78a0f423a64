package scan

import (
	"os"
	"path/filepath"
	"strings"
)

// excludedDirs and excludedExtensions mirror scan_service.py's exclusion
// sets, keeping build/dependency/cache directories and compiled
// binaries out of the engine's view of a user's files.
var excludedDirs = map[string]bool{
	"node_modules": true, ".git": true, "__pycache__": true, "venv": true, ".venv": true,
	"dist": true, "build": true, "release": true, ".cache": true, ".mypy_cache": true,
	".pytest_cache": true, "site-packages": true, "eggs": true, ".eggs": true,
}

var excludedExtensions = map[string]bool{
	".pyc": true, ".pyo": true, ".pyd": true, ".so": true, ".dylib": true, ".dll": true, ".exe": true,
}

// collectFiles walks folderPath recursively, never following symlinks
// (avoids cycles), skipping dotfiles/dot-directories, the excluded
// directory set, and the excluded extension set.
func collectFiles(folderPath string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(folderPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == folderPath {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != folderPath && (strings.HasPrefix(name, ".") || excludedDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if excludedExtensions[ext] {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func fileMetadata(path string) (size int64, modifiedAt int64, ok bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, false
	}
	return info.Size(), info.ModTime().Unix(), true
}
