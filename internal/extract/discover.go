package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// ErrInvalidPath is reported for an input that is neither a file nor a directory.
var ErrInvalidPath = errors.New("not a file or directory")

// DiscoverOptions controls which files Discover returns.
type DiscoverOptions struct {
	// Extensions lists analyzed file extensions, with or without the dot.
	Extensions []string
	// ExcludeDirs lists directory names skipped anywhere in a walk.
	ExcludeDirs []string
}

// Discover expands input paths into the sorted, de-duplicated list of source
// files to analyze. A file is taken as-is when it has an analyzed extension;
// a directory is walked recursively, honoring the root .gitignore. Inputs
// that are neither are logged, reported and skipped.
func Discover(paths []string, opts DiscoverOptions, logger *slog.Logger) ([]string, []FileError) {
	allowed := normalizeExtensions(opts.Extensions)
	exclude := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		exclude[d] = true
	}

	seen := make(map[string]bool)
	var files []string
	var skipped []FileError

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, input := range paths {
		info, err := os.Stat(input)
		switch {
		case err != nil:
			skipped = append(skipped, FileError{Path: input, Err: fmt.Errorf("%w: %v", ErrInvalidPath, err)})
			logger.Error("Skipping invalid input path", slog.String("path", input), slog.String("error", err.Error()))
		case info.Mode().IsRegular():
			if allowed[strings.ToLower(filepath.Ext(input))] {
				add(filepath.Clean(input))
			} else {
				logger.Debug("Skipping file with unanalyzed extension", slog.String("path", input))
			}
		case info.IsDir():
			if err := walkDir(input, allowed, exclude, logger, add); err != nil {
				skipped = append(skipped, FileError{Path: input, Err: err})
				logger.Error("Directory walk failed", slog.String("path", input), slog.String("error", err.Error()))
			}
		default:
			skipped = append(skipped, FileError{Path: input, Err: ErrInvalidPath})
			logger.Error("Skipping invalid input path", slog.String("path", input), slog.String("error", ErrInvalidPath.Error()))
		}
	}

	slices.Sort(files)
	return files, skipped
}

// walkDir adds every analyzed file under root.
func walkDir(root string, allowed, exclude map[string]bool, logger *slog.Logger, add func(string)) error {
	var gi *ignore.GitIgnore
	if compiled, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		gi = compiled
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping inaccessible path", slog.String("path", path), slog.String("error", err.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if name == ".git" || exclude[name] || (gi != nil && gi.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}

		if !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			logger.Debug("Skipping ignored file", slog.String("path", path))
			return nil
		}
		add(path)
		return nil
	})
}

// normalizeExtensions lower-cases extensions and ensures a leading dot.
func normalizeExtensions(exts []string) map[string]bool {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}
	return allowed
}
