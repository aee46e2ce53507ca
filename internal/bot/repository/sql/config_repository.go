package sql

import (
	"context"
	"errors"
	"time"

	"github.com/central-university-dev/go-MentionsRelay/internal/database"
	customerrors "github.com/central-university-dev/go-MentionsRelay/internal/domain/errors"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
	"github.com/central-university-dev/go-MentionsRelay/pkg/txs"
	"github.com/jackc/pgx/v5"
)

type ConfigRepository struct {
	db *database.PostgresDB
}

func NewConfigRepository(db *database.PostgresDB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) FetchUser(ctx context.Context, id string) (models.UserConfig, bool, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	var mentionsMode, enabled int

	err := querier.QueryRow(ctx,
		"SELECT mentions_mode, enabled FROM user_config WHERE id = $1", id).
		Scan(&mentionsMode, &enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserConfig{}, false, nil
		}

		return models.UserConfig{}, false, &customerrors.ErrSQLExecution{Operation: "получение конфигурации пользователя", Cause: err}
	}

	cfg := models.UserConfig{
		MentionsMode: models.MentionsMode(mentionsMode),
		Enabled:      models.MentionsEnabled(enabled),
	}

	return cfg, true, nil
}

func (r *ConfigRepository) FetchServer(ctx context.Context, id string) (models.ServerConfig, bool, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	var enabled int

	err := querier.QueryRow(ctx,
		"SELECT enabled FROM server_config WHERE id = $1", id).
		Scan(&enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ServerConfig{}, false, nil
		}

		return models.ServerConfig{}, false, &customerrors.ErrSQLExecution{Operation: "получение конфигурации сервера", Cause: err}
	}

	return models.ServerConfig{Enabled: models.MentionsEnabled(enabled)}, true, nil
}

func (r *ConfigRepository) UpsertUser(ctx context.Context, id string, cfg models.UserConfig) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	now := time.Now()

	// Одиночный upsert: никакой гонки update-then-insert при
	// конкурентной записи одного и того же id.
	_, err := querier.Exec(ctx, `
		INSERT INTO user_config (id, mentions_mode, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			mentions_mode = EXCLUDED.mentions_mode,
			enabled = EXCLUDED.enabled,
			updated_at = EXCLUDED.updated_at
	`, id, int(cfg.MentionsMode), int(cfg.Enabled), now, now)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение конфигурации пользователя", Cause: err}
	}

	return nil
}

func (r *ConfigRepository) UpsertServer(ctx context.Context, id string, cfg models.ServerConfig) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	now := time.Now()

	_, err := querier.Exec(ctx, `
		INSERT INTO server_config (id, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			updated_at = EXCLUDED.updated_at
	`, id, int(cfg.Enabled), now, now)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение конфигурации сервера", Cause: err}
	}

	return nil
}
