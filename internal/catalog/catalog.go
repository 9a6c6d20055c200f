package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// DefaultMaxDepth bounds directory recursion during a scan
const DefaultMaxDepth = 3

// DefaultExtensions lists the playable file extensions in priority order
var DefaultExtensions = []string{".mp3", ".wav", ".flac", ".ogg", ".oga", ".aiff", ".aif"}

// Scanner finds playable tracks beneath a directory
type Scanner struct {
	fs         afero.Fs
	extensions []string
}

// NewScanner creates a scanner over the given filesystem with the default
// extension filter
func NewScanner(fs afero.Fs) *Scanner {
	return NewScannerWithExtensions(fs, DefaultExtensions)
}

// NewScannerWithExtensions creates a scanner with a custom extension filter
func NewScannerWithExtensions(fs afero.Fs, extensions []string) *Scanner {
	slog.Debug("creating track scanner",
		"extensions", extensions,
		"extension_count", len(extensions))

	return &Scanner{fs: fs, extensions: extensions}
}

// Scan walks dir up to maxDepth levels deep and returns the playable file
// paths sorted lexicographically.
func (s *Scanner) Scan(dir string, maxDepth int) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("scan directory cannot be empty")
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	slog.Debug("scanning for tracks", "dir", dir, "max_depth", maxDepth)

	cleanRoot := filepath.Clean(dir)
	var tracks []string

	err := afero.Walk(s.fs, cleanRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal
			slog.Debug("skipping unreadable entry", "path", path, "error", err)
			return nil
		}

		if info.IsDir() {
			if depthOf(cleanRoot, path) >= maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if s.IsAudioFile(path) {
			tracks = append(tracks, path)
		}
		return nil
	})
	if err != nil {
		slog.Error("track scan failed", "dir", dir, "error", err)
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Strings(tracks)

	slog.Info("track scan completed",
		"dir", dir,
		"tracks_found", len(tracks))
	return tracks, nil
}

// IsAudioFile checks the extension filter
func (s *Scanner) IsAudioFile(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range s.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// depthOf counts directory levels of path below root
func depthOf(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

// Catalog holds the ordered list of playable tracks for one directory and
// re-scans it on demand.
type Catalog struct {
	scanner  *Scanner
	dir      string
	maxDepth int
	tracks   []string
}

// NewCatalog creates an empty catalog for dir
func NewCatalog(scanner *Scanner, dir string) *Catalog {
	slog.Debug("creating track catalog", "dir", dir)
	return &Catalog{scanner: scanner, dir: dir, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth overrides the scan depth limit
func (c *Catalog) SetMaxDepth(depth int) {
	c.maxDepth = depth
}

// Refresh re-scans the catalog directory
func (c *Catalog) Refresh() error {
	tracks, err := c.scanner.Scan(c.dir, c.maxDepth)
	if err != nil {
		return err
	}
	c.tracks = tracks
	return nil
}

// Tracks returns the most recently scanned track list
func (c *Catalog) Tracks() []string {
	return c.tracks
}

// Dir returns the catalog's root directory
func (c *Catalog) Dir() string {
	return c.dir
}
