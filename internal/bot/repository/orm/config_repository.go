package orm

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/central-university-dev/go-MentionsRelay/internal/database"
	customerrors "github.com/central-university-dev/go-MentionsRelay/internal/domain/errors"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
	"github.com/central-university-dev/go-MentionsRelay/pkg/txs"
	"github.com/jackc/pgx/v5"
)

type ConfigRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewConfigRepository(db *database.PostgresDB) *ConfigRepository {
	return &ConfigRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ConfigRepository) FetchUser(ctx context.Context, id string) (models.UserConfig, bool, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select("mentions_mode", "enabled").
		From("user_config").
		Where(sq.Eq{"id": id})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return models.UserConfig{}, false, &customerrors.ErrBuildSQLQuery{Operation: "получение конфигурации пользователя", Cause: err}
	}

	var mentionsMode, enabled int

	err = querier.QueryRow(ctx, query, args...).Scan(&mentionsMode, &enabled)
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

	selectQuery := r.sq.Select("enabled").
		From("server_config").
		Where(sq.Eq{"id": id})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return models.ServerConfig{}, false, &customerrors.ErrBuildSQLQuery{Operation: "получение конфигурации сервера", Cause: err}
	}

	var enabled int

	err = querier.QueryRow(ctx, query, args...).Scan(&enabled)
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
	upsertQuery := r.sq.Insert("user_config").
		Columns("id", "mentions_mode", "enabled", "created_at", "updated_at").
		Values(id, int(cfg.MentionsMode), int(cfg.Enabled), now, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET mentions_mode = EXCLUDED.mentions_mode, enabled = EXCLUDED.enabled, updated_at = EXCLUDED.updated_at")

	query, args, err := upsertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "сохранение конфигурации пользователя", Cause: err}
	}

	_, err = querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение конфигурации пользователя", Cause: err}
	}

	return nil
}

func (r *ConfigRepository) UpsertServer(ctx context.Context, id string, cfg models.ServerConfig) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	now := time.Now()
	upsertQuery := r.sq.Insert("server_config").
		Columns("id", "enabled", "created_at", "updated_at").
		Values(id, int(cfg.Enabled), now, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = EXCLUDED.updated_at")

	query, args, err := upsertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "сохранение конфигурации сервера", Cause: err}
	}

	_, err = querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение конфигурации сервера", Cause: err}
	}

	return nil
}
