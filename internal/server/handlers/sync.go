package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mvailur/syncmarks/internal/sync"
	"github.com/mvailur/syncmarks/internal/validation"
	"github.com/mvailur/syncmarks/pkg/api"
)

// SyncEngine определяет интерфейс движка синхронизации для хендлеров
type SyncEngine interface {
	Push(ctx context.Context, userID string, req *api.PushRequest) (*api.PushResponse, error)
	Pull(ctx context.Context, userID, fromToken, toToken string) (*api.PullResponse, error)
	CheckUpdate(ctx context.Context, userID, localToken string) (*api.CheckUpdateResponse, error)
}

// SyncHandler handles push/pull synchronization requests
type SyncHandler struct {
	logger *slog.Logger
	engine SyncEngine
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, engine SyncEngine) *SyncHandler {
	return &SyncHandler{
		logger: logger,
		engine: engine,
	}
}

// HandlePush обрабатывает POST /api/v1/sync/push
// Принимает полный пакет операций и возвращает новый head-токен,
// пары временных id и авторитетные дельты сервера
func (h *SyncHandler) HandlePush(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.Error("User ID not found in context")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode push request", "error", err)
		h.writeError(w, http.StatusBadRequest, api.CodeValidation, "invalid request body")
		return
	}

	// форма пакета проверяется до каких-либо мутаций
	if err := validation.PushRequest(&req); err != nil {
		h.logger.Warn("Push batch rejected", "user_id", userID, "error", err)
		h.writeError(w, http.StatusBadRequest, api.CodeValidation, err.Error())
		return
	}

	resp, err := h.engine.Push(ctx, userID, &req)
	if err != nil {
		h.writeEngineError(w, userID, err)
		return
	}

	h.logger.Info("push completed", "user_id", userID, "pairs", len(resp.Pairs))
	h.writeJSON(w, http.StatusOK, resp)
}

// HandlePull обрабатывает GET /api/v1/sync/pull?from=token&to=token
// Без from возвращает полный снапшот, с from — инкрементальную дельту
func (h *SyncHandler) HandlePull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.Error("User ID not found in context")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	resp, err := h.engine.Pull(ctx, userID, from, to)
	if err != nil {
		h.writeEngineError(w, userID, err)
		return
	}

	h.logger.Info("pull completed", "user_id", userID, "full", from == "")
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleCheck обрабатывает GET /api/v1/sync/check?from=token
// Сообщает клиенту, расходится ли его локальный коммит с серверным head
func (h *SyncHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.Error("User ID not found in context")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	resp, err := h.engine.CheckUpdate(ctx, userID, r.URL.Query().Get("from"))
	if err != nil {
		h.writeEngineError(w, userID, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// writeEngineError транслирует таксономию ошибок ядра в коды ответов.
// Недоступность хранилища отдаётся как 500 без повторных попыток.
func (h *SyncHandler) writeEngineError(w http.ResponseWriter, userID string, err error) {
	var cycle *sync.CycleError

	switch {
	case errors.Is(err, sync.ErrValidation), errors.Is(err, sync.ErrBadToken):
		h.logger.Warn("Sync request rejected", "user_id", userID, "error", err)
		h.writeError(w, http.StatusBadRequest, api.CodeValidation, err.Error())
	case errors.Is(err, sync.ErrStaleClient):
		h.logger.Info("Stale client, pull required", "user_id", userID)
		h.writeError(w, http.StatusConflict, api.CodePullRequired, "local commit diverged, pull first")
	case errors.Is(err, sync.ErrConflict):
		h.logger.Warn("Unresolvable conflict", "user_id", userID, "error", err)
		h.writeError(w, http.StatusConflict, api.CodeConflict, err.Error())
	case errors.Is(err, sync.ErrNotFound):
		h.logger.Warn("Unknown entity referenced", "user_id", userID, "error", err)
		h.writeError(w, http.StatusNotFound, api.CodeNotFound, err.Error())
	case errors.As(err, &cycle):
		h.logger.Warn("Dependency cycle in batch", "user_id", userID, "stuck", cycle.Stuck)
		h.writeError(w, http.StatusUnprocessableEntity, api.CodeCycle, err.Error())
	default:
		h.logger.Error("Sync failed", "user_id", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
	}
}

func (h *SyncHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *SyncHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, api.ErrorResponse{Code: code, Message: message})
}
