package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	domainerrors "github.com/central-university-dev/go-MentionsRelay/internal/domain/errors"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
)

// ActorHeader - заголовок с идентификатором пользователя, выполняющего запрос.
const ActorHeader = "X-Actor-ID"

type settingsService interface {
	GetUserConfig(ctx context.Context, userID string) (models.UserConfig, error)
	UpdateUserConfig(ctx context.Context, userID string, update models.UserConfigUpdate) error
	GetServerConfig(ctx context.Context, serverID string) (models.ServerConfig, error)
	UpdateServerConfig(ctx context.Context, actorID, serverID string, update models.ServerConfigUpdate) error
}

// UserConfigResponse - представление настроек пользователя в API.
type UserConfigResponse struct {
	MentionsMode string `json:"mentionsMode"`
	Enabled      string `json:"enabled"`
}

type UserConfigUpdateRequest struct {
	MentionsMode *string `json:"mentionsMode,omitempty"`
	Enabled      *string `json:"enabled,omitempty"`
}

type ServerConfigResponse struct {
	Enabled string `json:"enabled"`
}

type ServerConfigUpdateRequest struct {
	Enabled *string `json:"enabled,omitempty"`
}

type SettingsHandler struct {
	settings settingsService
	logger   *slog.Logger
}

func NewSettingsHandler(settings settingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

func (h *SettingsHandler) GetUserConfig(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	cfg, err := h.settings.GetUserConfig(r.Context(), userID)
	if err != nil {
		h.logger.Error("Ошибка при получении настроек пользователя",
			"error", err,
			"userId", userID,
		)
		writeServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, UserConfigResponse{
		MentionsMode: cfg.MentionsMode.String(),
		Enabled:      cfg.Enabled.String(),
	})
}

func (h *SettingsHandler) UpdateUserConfig(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	var req UserConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}

	update, err := buildUserUpdate(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.settings.UpdateUserConfig(r.Context(), userID, update); err != nil {
		h.logger.Error("Ошибка при обновлении настроек пользователя",
			"error", err,
			"userId", userID,
		)
		writeServiceError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SettingsHandler) GetServerConfig(w http.ResponseWriter, r *http.Request) {
	serverID := r.PathValue("id")

	cfg, err := h.settings.GetServerConfig(r.Context(), serverID)
	if err != nil {
		h.logger.Error("Ошибка при получении настроек сервера",
			"error", err,
			"serverId", serverID,
		)
		writeServiceError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, ServerConfigResponse{
		Enabled: cfg.Enabled.String(),
	})
}

func (h *SettingsHandler) UpdateServerConfig(w http.ResponseWriter, r *http.Request) {
	serverID := r.PathValue("id")

	actorID := r.Header.Get(ActorHeader)
	if actorID == "" {
		writeError(w, http.StatusBadRequest, "Отсутствует заголовок "+ActorHeader)
		return
	}

	var req ServerConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}

	update := models.ServerConfigUpdate{}

	if req.Enabled != nil {
		enabled, err := parseEnabled(*req.Enabled)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		update.Enabled = &enabled
	}

	if err := h.settings.UpdateServerConfig(r.Context(), actorID, serverID, update); err != nil {
		h.logger.Error("Ошибка при обновлении настроек сервера",
			"error", err,
			"serverId", serverID,
			"actorId", actorID,
		)
		writeServiceError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func buildUserUpdate(req UserConfigUpdateRequest) (models.UserConfigUpdate, error) {
	update := models.UserConfigUpdate{}

	if req.MentionsMode != nil {
		mode, err := parseMode(*req.MentionsMode)
		if err != nil {
			return models.UserConfigUpdate{}, err
		}

		update.MentionsMode = &mode
	}

	if req.Enabled != nil {
		enabled, err := parseEnabled(*req.Enabled)
		if err != nil {
			return models.UserConfigUpdate{}, err
		}

		update.Enabled = &enabled
	}

	return update, nil
}

func parseMode(value string) (models.MentionsMode, error) {
	switch value {
	case "catalog":
		return models.ModeCatalog, nil
	case "normal":
		return models.ModeNormal, nil
	default:
		return 0, &domainerrors.ErrInvalidValue{FieldName: "mentionsMode", Value: value}
	}
}

func parseEnabled(value string) (models.MentionsEnabled, error) {
	switch value {
	case "default":
		return models.EnabledDefault, nil
	case "enabled":
		return models.EnabledYes, nil
	case "disabled":
		return models.EnabledNo, nil
	default:
		return 0, &domainerrors.ErrInvalidValue{FieldName: "enabled", Value: value}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
