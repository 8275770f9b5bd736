package download

import (
	"context"

	"github.com/handiism/tubetunes/internal/model"
)

// Request describes one download attempt.
type Request struct {
	TaskID     string
	Identifier string
	OutputDir  string
	Options    model.Options
}

// Progress is a progress report from a Downloader.
type Progress struct {
	// Fraction is the share done in [0, 1]. Values outside are clamped.
	Fraction float64

	// Message is a short human readable status, may be empty.
	Message string
}

// Downloader fetches a single identifier into a local file.
//
// Download blocks until the attempt finishes. It reports progress through
// the callback, which may be called from any goroutine but never after
// Download returns. Cancelling ctx must stop the attempt promptly; the
// returned error is then expected to wrap ctx.Err().
type Downloader interface {
	Download(ctx context.Context, req Request, progress func(Progress)) (*model.Artifact, error)
}

// DownloaderFunc adapts a plain function to the Downloader interface.
type DownloaderFunc func(ctx context.Context, req Request, progress func(Progress)) (*model.Artifact, error)

// Download calls f.
func (f DownloaderFunc) Download(ctx context.Context, req Request, progress func(Progress)) (*model.Artifact, error) {
	return f(ctx, req, progress)
}

// Store is the catalog the manager consults before admitting a task and
// commits completed artifacts to.
type Store interface {
	ExistsByIdentifier(ctx context.Context, identifier string) (bool, error)
	Save(ctx context.Context, artifact model.Artifact) error
}

// PostProcessor finishes a validated artifact, e.g. by tagging it. opts
// are the options the task was admitted with. Errors are logged as
// warnings and never fail the task.
type PostProcessor interface {
	Process(ctx context.Context, artifact *model.Artifact, opts model.Options) error
}
