package far

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/meigma/far/internal/extract"
)

// extractConfig holds extraction settings.
type extractConfig struct {
	skipExisting bool
	noSubdirs    bool
	workers      int
}

// ExtractOption configures extraction.
type ExtractOption func(*extractConfig)

// ExtractWithSkipExisting leaves files that already exist at their
// destination untouched. By default existing files are overwritten, which
// makes repeated extraction idempotent.
func ExtractWithSkipExisting() ExtractOption {
	return func(cfg *extractConfig) {
		cfg.skipExisting = true
	}
}

// ExtractWithoutSubdirs disables creation of intermediate directories
// implied by entry names. Entries whose parent directory does not exist
// then fail with an I/O error.
func ExtractWithoutSubdirs() ExtractOption {
	return func(cfg *extractConfig) {
		cfg.noSubdirs = true
	}
}

// ExtractWithWorkers extracts entries with n parallel workers. The
// default is serial extraction; FAR containers are small and rarely
// benefit from parallelism. Workers use positioned reads on a shared
// handle, so no extra file descriptors are opened.
func ExtractWithWorkers(n int) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.workers = n
	}
}

// Extract writes every manifest entry of the archive into destDir and
// returns the number of files written.
//
// Entry names become paths under destDir, with embedded separators
// honored as subdirectories. Names that would resolve outside destDir are
// rejected with fs.ErrInvalid before any file is written. Extraction is
// fail-fast: the first failing entry aborts the batch, and no destination
// file is ever left partially written (content lands in a temp file and
// is renamed on completion).
//
// When the manifest holds several entries resolving to the same
// destination path, the last one wins.
func (a *Archive) Extract(destDir string, opts ...ExtractOption) (int, error) {
	return a.ExtractEntries(destDir, a.manifest.Entries, opts...)
}

// ExtractEntries writes the given entries into destDir, with the same
// semantics as Extract. The entries are typically a filtered subset of
// the archive's manifest.
func (a *Archive) ExtractEntries(destDir string, entries []Entry, opts ...ExtractOption) (int, error) {
	cfg := extractConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	resolved, err := resolveEntries(entries)
	if err != nil {
		return 0, err
	}
	if len(resolved) == 0 {
		// Still materialize the destination root, per the contract that
		// destDir exists after a successful extraction.
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return 0, fmt.Errorf("create destination %s: %w", destDir, err)
		}
		return 0, nil
	}

	sink, err := extract.NewFileSink(destDir,
		extract.WithSkipExisting(cfg.skipExisting),
		extract.WithMakeDirs(!cfg.noSubdirs),
	)
	if err != nil {
		return 0, err
	}
	defer sink.Close()

	proc := extract.NewProcessor(a.source, int64(a.manifest.DirOffset),
		extract.WithWorkers(cfg.workers),
		extract.WithLogger(a.logger),
	)
	return proc.Process(resolved, sink)
}

// Extract opens the container at containerPath and writes every entry of
// the manifest into destDir, returning the number of files written.
//
// The manifest is typically the result of ReadManifest on the same
// container, possibly filtered in between. See Archive.Extract for the
// extraction semantics.
func Extract(m *Manifest, destDir, containerPath string, opts ...ExtractOption) (int, error) {
	f, err := os.Open(containerPath)
	if err != nil {
		return 0, fmt.Errorf("far: open container: %w", err)
	}
	defer f.Close()

	src, err := newFileSource(f)
	if err != nil {
		return 0, err
	}
	return New(m, src).Extract(destDir, opts...)
}

// resolveEntries normalizes and validates entry names, and deduplicates
// entries sharing a destination path keeping the last occurrence. The
// dedupe both realizes the last-write-wins policy and keeps destinations
// disjoint under parallel workers.
func resolveEntries(entries []Entry) ([]extract.Entry, error) {
	byPath := make(map[string]int, len(entries))
	resolved := make([]extract.Entry, 0, len(entries))
	for _, e := range entries {
		p := e.Path()
		if p == "." || !fs.ValidPath(p) {
			return nil, &fs.PathError{Op: "extract", Path: e.Name, Err: fs.ErrInvalid}
		}
		re := extract.Entry{
			Name:   e.Name,
			Path:   p,
			Offset: int64(e.Offset),
			Size:   int64(e.Size),
		}
		if i, ok := byPath[p]; ok {
			resolved[i] = re
			continue
		}
		byPath[p] = len(resolved)
		resolved = append(resolved, re)
	}
	return resolved, nil
}
