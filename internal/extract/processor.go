// Package extract copies entry payloads out of a container and commits
// them to a sink, serially or with a bounded worker pool.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/far/internal/format"
)

// Processor reads entry payloads from a container and writes them to a Sink.
//
// Entries are independent read/write cycles against a shared io.ReaderAt,
// so parallel workers need no coordination beyond the sink's own
// guarantees. Processing is fail-fast: the first entry error aborts the
// whole batch.
type Processor struct {
	source  io.ReaderAt
	dataEnd int64
	workers int
	logger  *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithWorkers sets the number of parallel workers. Values below 2 select
// serial processing, the default.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		p.workers = n
	}
}

// WithLogger sets the logger for extraction progress.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a Processor reading from source.
//
// dataEnd is the end of the container's data region (the directory start);
// every payload range is validated against it before any byte is written.
func NewProcessor(source io.ReaderAt, dataEnd int64, opts ...ProcessorOption) *Processor {
	p := &Processor{
		source:  source,
		dataEnd: dataEnd,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Processor) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// Process extracts entries into sink and returns the number of files
// written. Entries the sink declines are skipped, not counted.
//
// All payload ranges are validated up front so a corrupt entry fails the
// batch before any sibling work is committed.
func (p *Processor) Process(entries []Entry, sink Sink) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	for _, entry := range entries {
		if err := format.ValidateRange(entry.Name, entry.Offset, entry.Size, p.dataEnd); err != nil {
			return 0, err
		}
	}

	p.log().Debug("extracting", "entries", len(entries), "workers", p.workers)

	if p.workers < 2 {
		return p.processSerial(entries, sink)
	}
	return p.processParallel(entries, sink)
}

func (p *Processor) processSerial(entries []Entry, sink Sink) (int, error) {
	written := 0
	for _, entry := range entries {
		if !sink.ShouldProcess(entry) {
			p.log().Debug("skipping existing", "path", entry.Path)
			continue
		}
		if err := p.processEntry(entry, sink); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (p *Processor) processParallel(entries []Entry, sink Sink) (int, error) {
	var written atomic.Int64
	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(p.workers)

	for _, entry := range entries {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !sink.ShouldProcess(entry) {
				p.log().Debug("skipping existing", "path", entry.Path)
				return nil
			}
			if err := p.processEntry(entry, sink); err != nil {
				return err
			}
			written.Add(1)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return int(written.Load()), err
	}
	return int(written.Load()), nil
}

// processEntry reads one payload and commits it to the sink.
func (p *Processor) processEntry(entry Entry, sink Sink) error {
	buf := make([]byte, entry.Size)
	n, err := p.source.ReadAt(buf, entry.Offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("far: read entry %q: %w", entry.Name, err)
	}
	if int64(n) != entry.Size {
		return &format.FormatError{
			Offset: entry.Offset,
			Name:   entry.Name,
			Msg:    fmt.Sprintf("short payload read (%d of %d bytes)", n, entry.Size),
			Err:    format.ErrTruncated,
		}
	}

	w, err := sink.Writer(entry)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		_ = w.Discard()
		return fmt.Errorf("far: write %s: %w", entry.Path, err)
	}
	if err := w.Commit(); err != nil {
		return fmt.Errorf("far: commit %s: %w", entry.Path, err)
	}
	p.log().Debug("extracted", "path", entry.Path, "bytes", entry.Size)
	return nil
}
