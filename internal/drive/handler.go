package drive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/Hafiizherdian/dashboard2y2/internal/pipeline/sales"
	"github.com/Hafiizherdian/dashboard2y2/internal/service"
)

// FolderFinder resolves a slash separated folder path to a folder id.
type FolderFinder interface {
	FindFolderByPath(ctx context.Context, path string) (string, error)
}

type Handler struct {
	client        Client
	folders       FolderFinder
	ingestService *IngestService
}

func NewHandler(svc *Service, ingestService *IngestService) *Handler {
	return &Handler{
		client:        svc,
		folders:       svc,
		ingestService: ingestService,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/drive/files", h.ListFiles).Methods("GET")
	router.HandleFunc("/api/v1/drive/ingest", h.IngestFile).Methods("POST")
	router.HandleFunc("/api/v1/drive/ingest-folder", h.IngestFolder).Methods("POST")
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	folderID, ok := h.folderFromQuery(w, r)
	if !ok {
		return
	}

	files, err := h.client.ListFiles(r.Context(), folderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if files == nil {
		files = make([]*File, 0)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": files})
}

func (h *Handler) IngestFile(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	fileID := query.Get("fileId")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "fileId parameter is required")
		return
	}

	result, err := h.ingestService.IngestFile(r.Context(), fileID, query.Get("area"))
	if err != nil {
		writeError(w, statusFor(err), "ingestion failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "File ingested successfully",
		"data":    result,
	})
}

func (h *Handler) IngestFolder(w http.ResponseWriter, r *http.Request) {
	folderID, ok := h.folderFromQuery(w, r)
	if !ok {
		return
	}

	results, err := h.ingestService.IngestFolder(r.Context(), folderID, r.URL.Query().Get("area"))
	if err != nil {
		writeError(w, statusFor(err), "ingestion failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": results})
}

// folderFromQuery reads folderId, or resolves path when given.
func (h *Handler) folderFromQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	query := r.URL.Query()
	folderID := query.Get("folderId")
	folderPath := query.Get("path")
	if folderPath == "" {
		return folderID, true
	}

	resolved, err := h.folders.FindFolderByPath(r.Context(), folderPath)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return "", false
	}
	return resolved, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrFolderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnsupportedFile),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, sales.ErrUnsupportedFileType),
		errors.Is(err, sales.ErrNoValidRows),
		errors.Is(err, service.ErrUnknownArea):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status >= http.StatusInternalServerError {
		log.Error().Str("error", message).Msg("Drive request failed")
	}
	writeJSON(w, status, map[string]interface{}{"success": false, "error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
