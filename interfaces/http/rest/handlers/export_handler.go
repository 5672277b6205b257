package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"mindmapx/application/queries"
	querybus "mindmapx/application/queries/bus"
	"mindmapx/pkg/common"
	pkgerrors "mindmapx/pkg/errors"
)

// ExportHandler serves renderings and read-only helpers
type ExportHandler struct {
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// ExportJSON handles GET /sessions/{id}/export.json
func (h *ExportHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, queries.ExportQuery{SessionID: sessionID(r), Format: queries.FormatJSON}, true)
}

// ExportSVG handles GET /sessions/{id}/export.svg
func (h *ExportHandler) ExportSVG(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, queries.ExportQuery{SessionID: sessionID(r), Format: queries.FormatSVG}, true)
}

// ExportPNG handles GET /sessions/{id}/export.png?width=&height=
func (h *ExportHandler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	width, err := intParam(r, "width")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	height, err := intParam(r, "height")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.export(w, r, queries.ExportQuery{
		SessionID: sessionID(r),
		Format:    queries.FormatPNG,
		Width:     width,
		Height:    height,
	}, true)
}

// Preview handles GET /sessions/{id}/preview
func (h *ExportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, queries.ExportQuery{SessionID: sessionID(r), Format: queries.FormatHTML}, false)
}

// Suggestions handles GET /suggestions?label=
func (h *ExportHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetSuggestionsQuery{Label: r.URL.Query().Get("label")})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Palette handles GET /palette
func (h *ExportHandler) Palette(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetPaletteQuery{})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

func (h *ExportHandler) export(w http.ResponseWriter, r *http.Request, q queries.ExportQuery, download bool) {
	result, err := h.queryBus.Ask(r.Context(), q)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	file := result.(queries.ExportResult)
	name := file.FileName
	if !download {
		name = ""
	}
	common.RespondFile(w, file.ContentType, name, file.Body)
}

func intParam(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.NewValidationError(key + " must be an integer").WithCause(err)
	}
	return n, nil
}
