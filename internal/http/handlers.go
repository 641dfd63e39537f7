package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"xlsimport/internal/settings"
	"xlsimport/internal/task"
)

// maxUploadSize caps multipart uploads; legacy exports are small.
const maxUploadSize = 32 << 20

// handleUpload stores the uploaded export under a task-scoped temp name
// and starts the import job in the background.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Файл не передан")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xls" && ext != ".xlsx" {
		writeError(w, http.StatusBadRequest, "Поддерживаются только файлы .xls и .xlsx")
		return
	}

	taskID := uuid.New().String()
	path := filepath.Join(s.cfg.UploadDir, "temp_"+taskID+ext)

	dst, err := os.Create(path)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create temp upload", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "Не удалось сохранить файл")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		slog.ErrorContext(r.Context(), "Failed to write temp upload", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "Не удалось сохранить файл")
		return
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		writeError(w, http.StatusInternalServerError, "Не удалось сохранить файл")
		return
	}

	s.tasks.Create(taskID, s.processor.CityCount())

	// The job outlives the request, so it gets its own context.
	go s.processor.Run(context.Background(), taskID, path)

	slog.InfoContext(r.Context(), "Upload accepted",
		"task_id", taskID, "filename", header.Filename, "size", header.Size)

	writeJSON(w, http.StatusOK, map[string]string{
		"task_id": taskID,
		"message": "Файл загружен и начата обработка",
	})
}

// handleStatus returns a snapshot of one task.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, err := s.tasks.Get(id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Задача не найдена")
			return
		}
		writeError(w, http.StatusInternalServerError, "Не удалось получить статус")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleGetSettings returns the city-to-spreadsheet map in configured
// order.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.settings.Load(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Settings load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Не удалось загрузить настройки")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleSaveSettings replaces the stored city-to-spreadsheet map.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	cfg := settings.New()
	if err := json.NewDecoder(r.Body).Decode(cfg); err != nil {
		writeError(w, http.StatusBadRequest, "Неверный формат настроек")
		return
	}

	if err := s.settings.Save(r.Context(), cfg); err != nil {
		slog.ErrorContext(r.Context(), "Settings save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Не удалось сохранить настройки")
		return
	}

	slog.InfoContext(r.Context(), "Settings saved", "cities", cfg.Len())
	writeJSON(w, http.StatusOK, map[string]string{"message": "Настройки сохранены"})
}

// handleClearCache discards the cached remote client so the next job
// authenticates from scratch.
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.clients.Invalidate()
	slog.InfoContext(r.Context(), "Sheets client cache cleared")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Кэш клиента сброшен"})
}
