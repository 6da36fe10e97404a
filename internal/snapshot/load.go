package snapshot

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	lcrerrors "github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/types"
)

// LoadOptions controls the project scan.
type LoadOptions struct {
	Include      []string // doublestar globs relative to root; empty = everything
	Exclude      []string // doublestar globs relative to root
	Extensions   []string // file extensions to load (with dot); empty = defaults
	MaxFileSize  int64
	MaxFileCount int
}

// DefaultExtensions lists the source extensions the engine edits.
var DefaultExtensions = []string{".go", ".cs", ".py", ".js"}

// Load walks root, reads every matching source file and builds the initial
// snapshot. Documents are grouped into modules by top-level directory; files
// directly under root form the root module.
func Load(ctx context.Context, root string, opts LoadOptions) (*Project, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, lcrerrors.Wrap(lcrerrors.CodeFileNotFound, err, "project root %s not found", root)
	}

	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = types.DefaultMaxFileSize
	}
	if opts.MaxFileCount == 0 {
		opts.MaxFileCount = types.DefaultMaxFileCount
	}
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	extSet := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		extSet[e] = true
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			if matchesAny(opts.Exclude, rel+"/") || matchesAny(opts.Exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !extSet[filepath.Ext(path)] {
			return nil
		}
		if len(opts.Include) > 0 && !matchesAny(opts.Include, rel) {
			return nil
		}
		if matchesAny(opts.Exclude, rel) {
			return nil
		}
		if fi, ferr := d.Info(); ferr == nil && fi.Size() > opts.MaxFileSize {
			return nil
		}
		paths = append(paths, path)
		if len(paths) > opts.MaxFileCount {
			return lcrerrors.New(lcrerrors.CodeConfig, "project exceeds %d files; narrow include patterns", opts.MaxFileCount)
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, lcrerrors.Wrap(lcrerrors.CodeCancelled, ctx.Err(), "project load cancelled")
		}
		return nil, err
	}

	sort.Strings(paths)

	var (
		modules   []Module
		moduleIDs = map[string]types.ModuleID{}
		docs      []Document
	)
	moduleFor := func(path string) types.ModuleID {
		rel, _ := filepath.Rel(root, path)
		name := filepath.Base(root)
		if dir := filepath.Dir(filepath.ToSlash(rel)); dir != "." {
			name = strings.SplitN(dir, "/", 2)[0]
		}
		if id, ok := moduleIDs[name]; ok {
			return id
		}
		id := types.ModuleID(len(modules) + 1)
		moduleIDs[name] = id
		modules = append(modules, Module{ID: id, Name: name})
		return id
	}

	for i, path := range paths {
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, lcrerrors.Wrap(lcrerrors.CodeFileNotFound, rerr, "failed to read %s", path)
		}
		if !utf8.Valid(data) {
			continue // binary content slipped past the extension filter
		}
		docs = append(docs, NewDocument(types.DocumentID(i+1), moduleFor(path), path, string(data)))
	}

	return NewProject(root, modules, docs), nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}
