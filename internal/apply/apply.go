// Package apply pushes record manifests to the API through the panels'
// form path, skipping files whose content was already applied.
package apply

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rpgpanel/internal/config"
	"rpgpanel/internal/manifest"
	"rpgpanel/internal/resource"
	"rpgpanel/internal/store"
)

type Result struct {
	Created      int
	Updated      int
	FilesSkipped int
	Forgotten    int
	Errors       []error
}

type Options struct {
	// Full re-applies every file regardless of stored hashes.
	Full    bool
	Exclude []string
}

// Store is the slice of store.Store that apply needs.
type Store interface {
	EnsureSchema(ctx context.Context) error
	GetManifestHashes(ctx context.Context, panel string) (map[string]string, error)
	PutManifest(ctx context.Context, m store.Manifest) error
	RemoveStaleManifests(ctx context.Context, panel string, currentSourceFiles []string) (int64, error)
}

// Target is a loaded panel records can be saved through.
type Target interface {
	Descriptor() *config.Panel
	SaveRecord(ctx context.Context, record resource.Record) (resource.Record, bool, error)
}

// Opener returns the loaded panel named name.
type Opener func(ctx context.Context, name string) (Target, error)

func Run(ctx context.Context, roots []string, open Opener, db Store, options Options) (*Result, error) {
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	files, err := walkManifestFiles(roots, options.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking manifest files: %w", err)
	}

	result := &Result{}
	panelFiles := make(map[string][]string)
	panelHashes := make(map[string]map[string]string)
	targets := make(map[string]Target)

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("reading %s: %w", path, err))
			continue
		}
		doc, err := manifest.Parse(data)
		if err != nil {
			if errors.Is(err, manifest.ErrNoFrontmatter) {
				result.FilesSkipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}
		doc.SourceFile = path

		target, ok := targets[doc.Panel]
		if !ok {
			target, err = open(ctx, doc.Panel)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("opening panel for %s: %w", path, err))
				continue
			}
			targets[doc.Panel] = target
		}
		panelName := target.Descriptor().Name
		panelFiles[panelName] = append(panelFiles[panelName], path)

		hashes, ok := panelHashes[panelName]
		if !ok {
			if options.Full {
				hashes = map[string]string{}
			} else if hashes, err = db.GetManifestHashes(ctx, panelName); err != nil {
				return nil, fmt.Errorf("get manifest hashes for %s: %w", panelName, err)
			}
			panelHashes[panelName] = hashes
		}

		hash := computeHash(data)
		if existing, ok := hashes[path]; ok && existing == hash {
			result.FilesSkipped++
			continue
		}

		record := recordFor(doc, target.Descriptor())
		saved, created, err := target.SaveRecord(ctx, record)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("applying %s: %w", path, err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}

		err = db.PutManifest(ctx, store.Manifest{
			Panel:      panelName,
			SourceFile: path,
			RecordID:   saved.ID(target.Descriptor().IDField),
			SourceHash: hash,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("recording %s: %w", path, err))
		}
	}

	panels := make([]string, 0, len(panelFiles))
	for name := range panelFiles {
		panels = append(panels, name)
	}
	sort.Strings(panels)
	for _, name := range panels {
		removed, err := db.RemoveStaleManifests(ctx, name, panelFiles[name])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("forgetting stale manifests for %s: %w", name, err))
			continue
		}
		result.Forgotten += int(removed)
	}

	return result, nil
}

// recordFor builds the record payload; a body fills the panel's first text
// field unless the frontmatter already set it.
func recordFor(doc *manifest.Document, panel *config.Panel) resource.Record {
	record := resource.Record(doc.Fields).Clone()
	if doc.Body == "" {
		return record
	}
	for _, field := range panel.Fields {
		if field.Type != config.FieldText {
			continue
		}
		if _, set := record[field.Name]; !set {
			record[field.Name] = doc.Body
		}
		break
	}
	return record
}

func walkManifestFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() || isExcluded(path, excluded) {
				return nil
			}
			if strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
