package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maynagashev/gophtodo/internal/storage"
	"github.com/rs/zerolog"
)

// AssetSource отдает статические файлы по ключу.
type AssetSource interface {
	DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error)
}

// StaticHandler раздает css/js из встроенной статики или бакета MinIO.
type StaticHandler struct {
	source AssetSource
	logger zerolog.Logger
}

// NewStaticHandler создает новый экземпляр StaticHandler.
func NewStaticHandler(source AssetSource, logger zerolog.Logger) *StaticHandler {
	return &StaticHandler{source: source, logger: logger}
}

// Serve отдает файл, путь которого задан wildcard-параметром маршрута.
func (h *StaticHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	rc, err := h.source.DownloadFile(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error().Err(err).Str("key", key).Msg("Ошибка получения статического файла")
		internalError(w)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", storage.ContentType(key))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)

	if _, err = io.Copy(w, rc); err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("Ошибка передачи статического файла")
	}
}
