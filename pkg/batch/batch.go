// Package batch drives date resolution and stamping over single files and
// whole directories.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/quidome/photostamp/pkg/scan"
	"github.com/quidome/photostamp/pkg/stamp"
)

// DateResolver returns the YYYY-MM-DD date an image was taken.
type DateResolver interface {
	ResolveDate(path string) (string, error)
}

// Stamper writes a stamped copy of an image and returns its path.
type Stamper interface {
	Stamp(path, text string) (string, error)
}

// Processor stamps images one at a time. A failing image never stops a
// directory run.
type Processor struct {
	resolver DateResolver
	stamper  Stamper
	logger   *log.Logger
}

// New returns a Processor. A nil logger discards output.
func New(resolver DateResolver, stamper Stamper, logger *log.Logger) *Processor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Processor{resolver: resolver, stamper: stamper, logger: logger}
}

// ProcessFile resolves the date of a single image and stamps it. It returns
// the output path.
func (p *Processor) ProcessFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := filepath.Base(path)
	if !scan.IsSupported(path) {
		p.logger.Warn("unsupported file format", "file", name)
		return "", fmt.Errorf("%w: %s", stamp.ErrUnsupportedFormat, name)
	}

	p.logger.Info("processing", "file", name)

	date, err := p.resolver.ResolveDate(path)
	if err != nil {
		p.logger.Error("could not determine date", "file", name, "err", err)
		return "", fmt.Errorf("resolve date of %s: %w", name, err)
	}
	p.logger.Debug("date taken", "file", name, "date", date)

	out, err := p.stamper.Stamp(path, date)
	if err != nil {
		p.logger.Error("failed to stamp image", "file", name, "err", err)
		return "", fmt.Errorf("stamp %s: %w", name, err)
	}

	p.logger.Info("saved", "file", name, "date", date, "output", out)
	return out, nil
}

// ProcessDirectory stamps every supported image directly inside dir, in name
// order. It returns how many images succeeded out of how many were found.
// An empty directory yields (0, 0, nil). When ctx is cancelled the counts so
// far are returned with ctx.Err().
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) (succeeded, total int, err error) {
	records, err := scan.Scan(os.DirFS(dir), ".")
	if err != nil {
		return 0, 0, fmt.Errorf("list %s: %w", dir, err)
	}

	if len(records) == 0 {
		p.logger.Warn("no supported image files found", "dir", dir)
		return 0, 0, nil
	}
	p.logger.Info(fmt.Sprintf("Found %d image files", len(records)), "dir", dir)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("interrupted", "processed", total, "remaining", len(records)-total)
			return succeeded, total, err
		}

		total++
		if _, err := p.ProcessFile(ctx, filepath.Join(dir, filepath.FromSlash(rec.Path))); err != nil {
			continue
		}
		succeeded++
	}

	p.logger.Info("batch complete", "succeeded", succeeded, "total", total)
	return succeeded, total, nil
}
