// Package syre provides access to a Syre project's local asset database.
//
// A project is a directory tree whose containers each hold a `.syre`
// application directory with an `assets.json` manifest listing the
// container's registered assets.
package syre

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/syre-data/excel-template-runner/internal/log"
)

const (
	appDir        = ".syre"
	assetManifest = "assets.json"

	uncPrefix = `\\?\`
)

// ErrNoProject indicates no project root could be located.
var ErrNoProject = errors.New("no syre project found")

// Database is a handle to a project's local asset database.
type Database struct {
	root string
	log  zerolog.Logger
}

// Open opens the project database rooted at root. An empty root falls back
// to the SYRE_PROJECT_ROOT environment variable, then to walking up from
// the working directory to the nearest directory holding a `.syre` entry.
func Open(root string) (*Database, error) {
	if root == "" {
		root = os.Getenv("SYRE_PROJECT_ROOT")
	}
	if root == "" {
		found, err := findRoot()
		if err != nil {
			return nil, err
		}
		root = found
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project root %q: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %q is not a directory", abs)
	}
	return &Database{root: abs, log: log.WithComponent("syre")}, nil
}

func findRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, appDir)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProject
		}
		dir = parent
	}
}

// Root returns the project root path.
func (db *Database) Root() string { return db.root }

// CanonicalRoot returns the project root with symlinks resolved. On Windows
// the path carries the extended-length UNC prefix so long paths keep
// working.
func (db *Database) CanonicalRoot() (string, error) {
	root, err := filepath.EvalSymlinks(db.root)
	if err != nil {
		return "", fmt.Errorf("canonicalize project root: %w", err)
	}
	if runtime.GOOS == "windows" && !strings.HasPrefix(root, uncPrefix) {
		root = uncPrefix + root
	}
	return root, nil
}

// FindAssets returns every asset in the project matching the filter,
// ordered by file path.
func (db *Database) FindAssets(filter Filter) ([]*Asset, error) {
	var assets []*Asset
	err := filepath.WalkDir(db.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || d.Name() != appDir {
			return nil
		}
		container := filepath.Dir(path)
		found, err := readManifest(container)
		if err != nil {
			return err
		}
		for _, a := range found {
			if filter.Matches(a) {
				assets = append(assets, a)
			}
		}
		return fs.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].File() < assets[j].File() })
	db.log.Debug().Int("count", len(assets)).Msg("assets matched filter")
	return assets, nil
}

// AddAsset registers an output asset at the given project-relative path and
// returns the absolute path the asset file should be written to. An
// existing registration for the same path is replaced.
func (db *Database) AddAsset(relPath string, props Properties) (string, error) {
	relPath = filepath.ToSlash(filepath.Clean(filepath.FromSlash(relPath)))
	if relPath == "." || strings.HasPrefix(relPath, "../") || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("asset path %q must be relative and inside the project", relPath)
	}

	container := filepath.Join(db.root, filepath.Dir(filepath.FromSlash(relPath)))
	if err := os.MkdirAll(filepath.Join(container, appDir), 0o755); err != nil {
		return "", fmt.Errorf("create container: %w", err)
	}

	assets, err := readManifest(container)
	if err != nil {
		return "", err
	}

	name := filepath.ToSlash(filepath.Base(relPath))
	kept := assets[:0]
	for _, a := range assets {
		if a.Path != name {
			kept = append(kept, a)
		}
	}
	asset := &Asset{
		ID:         uuid.NewString(),
		Properties: props,
		Path:       name,
		container:  container,
	}
	kept = append(kept, asset)

	if err := writeManifest(container, kept); err != nil {
		return "", err
	}
	db.log.Info().Str("path", relPath).Str("rid", asset.ID).Msg("asset registered")
	return asset.File(), nil
}

func readManifest(container string) ([]*Asset, error) {
	path := filepath.Join(container, appDir, assetManifest)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest %q: %w", path, err)
	}
	var assets []*Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, fmt.Errorf("parse manifest %q: %w", path, err)
	}
	for _, a := range assets {
		a.container = container
	}
	return assets, nil
}

func writeManifest(container string, assets []*Asset) error {
	path := filepath.Join(container, appDir, assetManifest)
	data, err := json.MarshalIndent(assets, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %q: %w", path, err)
	}
	return nil
}
