package export

import (
	"context"

	"mindmapx/application/session"
	"mindmapx/domain/config"
	pkgerrors "mindmapx/pkg/errors"
)

// Result is the outcome of a deferred raster export
type Result struct {
	PNG     []byte
	Version int
	Err     error
}

// Pending is an in-flight raster export
type Pending struct {
	done   chan struct{}
	cancel context.CancelFunc
	result Result
}

// ExportImage renders frame to PNG on its own goroutine. The frame is
// already a copy, so later edits or resets never leak into the image.
func ExportImage(ctx context.Context, frame session.Frame, cfg *config.DomainConfig, opts RasterOptions) *Pending {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pending{done: make(chan struct{}), cancel: cancel}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	background := frame.Colors.Background

	go func() {
		defer close(p.done)
		defer cancel()

		if err := ctx.Err(); err != nil {
			p.result = Result{Err: cancelled(err)}
			return
		}
		surface := Render(frame, cfg)
		if err := ctx.Err(); err != nil {
			p.result = Result{Err: cancelled(err)}
			return
		}
		png, err := ToRasterImage(surface, background, opts)
		if err == nil {
			if cerr := ctx.Err(); cerr != nil {
				err = cancelled(cerr)
				png = nil
			}
		}
		p.result = Result{PNG: png, Version: frame.Version, Err: err}
	}()
	return p
}

// Wait blocks until the export finishes or ctx is done
func (p *Pending) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-p.done:
		return p.result.PNG, p.result.Err
	case <-ctx.Done():
		p.cancel()
		return nil, cancelled(ctx.Err())
	}
}

// Cancel aborts the export
func (p *Pending) Cancel() {
	p.cancel()
}

// Done is closed once the result is available
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result returns the outcome; valid only after Done is closed
func (p *Pending) Result() Result {
	<-p.done
	return p.result
}

func cancelled(err error) error {
	return pkgerrors.NewRenderError(pkgerrors.CodeExportCancelled, "export cancelled").WithCause(err)
}
