package clients

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/central-university-dev/go-MentionsRelay/internal/bot/sanitize"
	"github.com/central-university-dev/go-MentionsRelay/internal/common/httputil"
	"github.com/central-university-dev/go-MentionsRelay/internal/common/metrics"
	"github.com/central-university-dev/go-MentionsRelay/internal/config"
	domainerrors "github.com/central-university-dev/go-MentionsRelay/internal/domain/errors"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
	"github.com/go-resty/resty/v2"
)

// GatewayClient - HTTP клиент шлюза чат-платформы: статусы пользователей,
// проверка прав и доставка личных сообщений. Сам протокол сессии платформы
// живет на стороне шлюза.
type GatewayClient struct {
	readClient     *resty.Client
	deliveryClient *resty.Client
	baseURL        string
	token          string
	logger         *slog.Logger
}

func NewGatewayClient(baseURL string, cfg *config.Config, logger *slog.Logger) *GatewayClient {
	if baseURL == "" {
		baseURL = "http://chat_gateway:8090"
	}

	return &GatewayClient{
		// Чтения идемпотентны и могут повторяться, доставка - нет.
		readClient:     httputil.CreateResilientHTTPClient(cfg, logger, "gateway_read"),
		deliveryClient: httputil.CreateDeliveryHTTPClient(cfg, logger, "gateway_delivery"),
		baseURL:        baseURL,
		token:          cfg.GatewayToken,
		logger:         logger,
	}
}

func (c *GatewayClient) GetPresence(ctx context.Context, userID string) (models.Presence, error) {
	var result struct {
		Presence string `json:"presence"`
	}

	start := time.Now()

	resp, err := c.readClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.token).
		SetResult(&result).
		Get(fmt.Sprintf("%s/v1/users/%s/presence", c.baseURL, userID))

	metrics.RecordGatewayRequest("get_presence", time.Since(start))

	if err != nil {
		return models.PresenceUnknown, &domainerrors.ErrPresenceUnavailable{UserID: userID, Cause: err}
	}

	if !resp.IsSuccess() {
		return models.PresenceUnknown, &domainerrors.ErrPresenceUnavailable{
			UserID: userID,
			Cause:  &domainerrors.HTTPError{StatusCode: resp.StatusCode()},
		}
	}

	return models.ParsePresence(result.Presence), nil
}

// SendPrivateMessage доставляет личное сообщение. Текст проходит через
// санитайзер здесь, на транспортном уровне: обходных путей отправки нет.
func (c *GatewayClient) SendPrivateMessage(ctx context.Context, userID, text string) error {
	body := map[string]string{
		"text": sanitize.Sanitize(text),
	}

	start := time.Now()

	resp, err := c.deliveryClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.token).
		SetBody(body).
		Post(fmt.Sprintf("%s/v1/users/%s/messages", c.baseURL, userID))

	metrics.RecordGatewayRequest("send_private_message", time.Since(start))

	if err != nil {
		return &domainerrors.ErrDeliveryFailed{UserID: userID, Cause: err}
	}

	if !resp.IsSuccess() {
		return &domainerrors.ErrDeliveryFailed{
			UserID: userID,
			Cause:  &domainerrors.HTTPError{StatusCode: resp.StatusCode()},
		}
	}

	return nil
}

func (c *GatewayClient) HasManageGroupPermission(ctx context.Context, userID, groupID string) (bool, error) {
	var result struct {
		ManageGroup bool `json:"manage_group"`
	}

	start := time.Now()

	resp, err := c.readClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.token).
		SetResult(&result).
		Get(fmt.Sprintf("%s/v1/groups/%s/members/%s/permissions", c.baseURL, groupID, userID))

	metrics.RecordGatewayRequest("check_permissions", time.Since(start))

	if err != nil {
		return false, fmt.Errorf("ошибка при проверке прав пользователя %s: %w", userID, err)
	}

	if !resp.IsSuccess() {
		return false, fmt.Errorf("шлюз вернул статус %d при проверке прав", resp.StatusCode())
	}

	return result.ManageGroup, nil
}
