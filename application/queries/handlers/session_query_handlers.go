package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mindmapx/application/export"
	"mindmapx/application/queries"
	"mindmapx/application/queries/bus"
	"mindmapx/application/session"
	"mindmapx/domain/config"
	"mindmapx/domain/suggestions"
	pkgerrors "mindmapx/pkg/errors"
)

// ExportRecorder receives one observation per export
type ExportRecorder interface {
	ExportFinished(format string, elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ExportFinished(string, time.Duration, error) {}

// SessionQueryHandler answers every read-only query
type SessionQueryHandler struct {
	sessions session.Repository
	engine   *suggestions.Engine
	cfg      *config.DomainConfig
	raster   export.RasterOptions
	metrics  ExportRecorder
	logger   *zap.Logger
	clock    func() time.Time
}

// NewSessionQueryHandler creates a new handler instance
func NewSessionQueryHandler(
	sessions session.Repository,
	engine *suggestions.Engine,
	cfg *config.DomainConfig,
	raster export.RasterOptions,
	metrics ExportRecorder,
	logger *zap.Logger,
) *SessionQueryHandler {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &SessionQueryHandler{
		sessions: sessions,
		engine:   engine,
		cfg:      cfg,
		raster:   raster,
		metrics:  metrics,
		logger:   logger,
		clock:    time.Now,
	}
}

// Register binds every query to the bus
func (h *SessionQueryHandler) Register(b *bus.QueryBus) error {
	routes := []struct {
		query bus.Query
		fn    bus.QueryHandlerFunc
	}{
		{queries.GetSessionQuery{}, h.getSession},
		{queries.ExportQuery{}, h.export},
		{queries.GetSuggestionsQuery{}, h.getSuggestions},
		{queries.GetPaletteQuery{}, h.getPalette},
	}
	for _, r := range routes {
		if err := b.Register(r.query, r.fn); err != nil {
			return err
		}
	}
	return nil
}

func (h *SessionQueryHandler) getSession(ctx context.Context, q bus.Query) (interface{}, error) {
	s, err := h.sessions.Get(ctx, q.(queries.GetSessionQuery).SessionID)
	if err != nil {
		return nil, err
	}
	return s.View(), nil
}

func (h *SessionQueryHandler) getSuggestions(_ context.Context, q bus.Query) (interface{}, error) {
	return h.engine.Generate(q.(queries.GetSuggestionsQuery).Label), nil
}

func (h *SessionQueryHandler) getPalette(_ context.Context, _ bus.Query) (interface{}, error) {
	palette := make([]string, len(h.cfg.Palette))
	copy(palette, h.cfg.Palette)
	return palette, nil
}

func (h *SessionQueryHandler) export(ctx context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.ExportQuery)
	s, err := h.sessions.Get(ctx, query.SessionID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	frame := s.Capture()
	result, err := h.render(ctx, query, frame)
	h.metrics.ExportFinished(string(query.Format), time.Since(start), err)
	if err != nil {
		h.logger.Error("Export failed",
			zap.String("session_id", query.SessionID),
			zap.String("format", string(query.Format)),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

func (h *SessionQueryHandler) render(ctx context.Context, query queries.ExportQuery, frame session.Frame) (queries.ExportResult, error) {
	switch query.Format {
	case queries.FormatJSON:
		now := h.clock()
		body, err := export.ToDocument(frame.Snapshot, now).Marshal()
		if err != nil {
			return queries.ExportResult{}, pkgerrors.NewRenderError(pkgerrors.CodeEncodeFailed, "document encoding failed").WithCause(err)
		}
		return queries.ExportResult{FileName: export.FileName(now), ContentType: "application/json", Body: body}, nil

	case queries.FormatSVG:
		return queries.ExportResult{
			FileName:    "mindmap.svg",
			ContentType: "image/svg+xml",
			Body:        export.Render(frame, h.cfg).SVG(),
		}, nil

	case queries.FormatHTML:
		body, err := export.PreviewHTML(frame, h.cfg)
		if err != nil {
			return queries.ExportResult{}, err
		}
		return queries.ExportResult{FileName: "mindmap.html", ContentType: "text/html; charset=utf-8", Body: body}, nil

	default:
		opts := h.raster
		if query.Width > 0 {
			opts.Width = query.Width
		}
		if query.Height > 0 {
			opts.Height = query.Height
		}
		if h.cfg.ExportTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.cfg.ExportTimeout)
			defer cancel()
		}
		body, err := export.ExportImage(ctx, frame, h.cfg, opts).Wait(ctx)
		if err != nil {
			return queries.ExportResult{}, err
		}
		return queries.ExportResult{FileName: export.ImageFileName, ContentType: "image/png", Body: body}, nil
	}
}
