// Package ingest walks a repository tree and flattens its code files into
// a single context bundle suitable for embedding in a model prompt.
package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// Context is the flattened view of a repository handed to the models.
type Context struct {
	Summary   string `json:"summary"`   // one-paragraph stats about the ingest
	Structure string `json:"structure"` // newline-separated relative paths
	Content   string `json:"content"`   // concatenated file contents with headers
}

// defaultIncludePatterns match code files worth showing to a model.
var defaultIncludePatterns = []string{
	"*.py", "*.js", "*.ts", "*.tsx", "*.jsx",
	"*.java", "*.cpp", "*.c", "*.h", "*.hpp", "*.cs",
	"*.go", "*.rs", "*.rb", "*.php", "*.swift", "*.kt", "*.scala",
	"*.r", "*.sql", "*.sh", "*.bash",
	"*.html", "*.css", "*.scss", "*.sass",
	"*.json", "*.yaml", "*.yml", "*.xml", "*.toml",
}

// defaultExcludePatterns match documentation, lockfiles, media and other
// files that only burn prompt tokens.
var defaultExcludePatterns = []string{
	"*.md", "*.txt", "*.rst", "*.adoc",
	".env*", "*.env", ".envrc",
	"*.pyc", "*.egg-info",
	"*.swp", "*.swo",
	".gitignore", ".gitattributes", ".gitlab-ci.yml",
	"package-lock.json", "yarn.lock", "poetry.lock", "Pipfile.lock",
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.ico", "*.pdf",
	"LICENSE", "*.log",
}

// skipDirs are directory names never descended into.
var skipDirs = map[string]struct{}{
	".git":         {},
	".github":      {},
	".idea":        {},
	".vscode":      {},
	"node_modules": {},
	"venv":         {},
	"env":          {},
	".venv":        {},
	"__pycache__":  {},
	"dist":         {},
	"build":        {},
}

// Ingester walks repositories with a fixed pattern set.
type Ingester struct {
	include []string
	exclude []string
	logger  *zap.Logger
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithIncludePatterns replaces the default include glob patterns.
func WithIncludePatterns(patterns []string) Option {
	return func(i *Ingester) {
		i.include = patterns
	}
}

// WithExcludePatterns replaces the default exclude glob patterns.
func WithExcludePatterns(patterns []string) Option {
	return func(i *Ingester) {
		i.exclude = patterns
	}
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Ingester) {
		i.logger = logger
	}
}

// New returns an Ingester with the default pattern sets applied.
func New(options ...Option) *Ingester {
	i := &Ingester{
		include: defaultIncludePatterns,
		exclude: defaultExcludePatterns,
		logger:  zap.NewNop(),
	}
	for _, o := range options {
		o(i)
	}
	return i
}

// Ingest walks the repository rooted at root and returns its context
// bundle. Files are visited in lexical order, so output is deterministic
// for a given tree.
func (i *Ingester) Ingest(root string) (*Context, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("could not stat repository path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository path %q is not a directory", root)
	}

	i.logger.Sugar().With("root", root).Info("starting repository ingestion")

	var (
		structure  strings.Builder
		content    strings.Builder
		fileCount  int
		totalBytes int
	)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}

		if !i.matches(rel, d.Name()) {
			return nil
		}

		b, readErr := os.ReadFile(path)
		if readErr != nil {
			i.logger.Sugar().With("file", rel, "error", readErr).Warn("skipping unreadable file")
			return nil
		}

		structure.WriteString(rel + "\n")
		content.WriteString(fmt.Sprintf("================\nFile: %s\n================\n", rel))
		content.Write(b)
		if len(b) > 0 && b[len(b)-1] != '\n' {
			content.WriteByte('\n')
		}
		content.WriteByte('\n')

		fileCount++
		totalBytes += len(b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error ingesting repository %q: %w", root, err)
	}

	ctx := &Context{
		Summary:   fmt.Sprintf("Repository: %s\nFiles ingested: %d\nTotal size: %d bytes", root, fileCount, totalBytes),
		Structure: structure.String(),
		Content:   content.String(),
	}

	i.logger.Sugar().With(
		"files", fileCount,
		"bytes", totalBytes,
	).Info("repository ingestion successful")

	return ctx, nil
}

// matches reports whether a file passes the include patterns and none of
// the exclude patterns. Patterns are tried against both the base name and
// the slash-separated relative path.
func (i *Ingester) matches(rel, base string) bool {
	for _, p := range i.exclude {
		if globMatch(p, rel, base) {
			return false
		}
	}
	for _, p := range i.include {
		if globMatch(p, rel, base) {
			return true
		}
	}
	return false
}

func globMatch(pattern, rel, base string) bool {
	if ok, err := doublestar.Match(pattern, base); err == nil && ok {
		return true
	}
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}
