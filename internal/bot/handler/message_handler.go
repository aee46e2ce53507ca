package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/central-university-dev/go-MentionsRelay/internal/domain/errors"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
)

type messageProcessor interface {
	HandleMessage(ctx context.Context, event *models.MessageEvent) error
}

// MessageEventRequest - тело запроса на обработку события сообщения.
type MessageEventRequest struct {
	MessageID   string   `json:"messageId"`
	Text        string   `json:"text"`
	AuthorID    string   `json:"authorId"`
	AuthorName  string   `json:"authorName"`
	Private     bool     `json:"private"`
	GroupID     string   `json:"groupId"`
	GroupName   string   `json:"groupName"`
	ChannelID   string   `json:"channelId"`
	ChannelName string   `json:"channelName"`
	Mentions    []string `json:"mentions"`
}

type MessageHandler struct {
	processor messageProcessor
	logger    *slog.Logger
}

func NewMessageHandler(processor messageProcessor, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		processor: processor,
		logger:    logger,
	}
}

func (h *MessageHandler) HandleMessageEvent(w http.ResponseWriter, r *http.Request) {
	var req MessageEventRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}

	if req.AuthorID == "" {
		writeError(w, http.StatusBadRequest, "Отсутствует обязательное поле authorId")
		return
	}

	event := &models.MessageEvent{
		MessageID:   req.MessageID,
		Text:        req.Text,
		AuthorID:    req.AuthorID,
		AuthorName:  req.AuthorName,
		Private:     req.Private,
		GroupID:     req.GroupID,
		GroupName:   req.GroupName,
		ChannelID:   req.ChannelID,
		ChannelName: req.ChannelName,
		Mentions:    req.Mentions,
	}

	if err := h.processor.HandleMessage(r.Context(), event); err != nil {
		h.logger.Error("Ошибка при обработке события сообщения",
			"error", err,
			"messageId", req.MessageID,
		)
		writeServiceError(w, err)

		return
	}

	w.WriteHeader(http.StatusAccepted)
}

type apiErrorResponse struct {
	Description string `json:"description"`
}

func writeError(w http.ResponseWriter, status int, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(apiErrorResponse{Description: description})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, &domainerrors.ErrPermissionDenied{}):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, &domainerrors.ErrInvalidValue{}),
		errors.Is(err, &domainerrors.ErrMissingRequiredField{}):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, &domainerrors.ErrStorageUnavailable{}):
		writeError(w, http.StatusServiceUnavailable, "Хранилище настроек недоступно")
	default:
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
	}
}
