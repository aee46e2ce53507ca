package repository

import (
	"log/slog"

	"github.com/central-university-dev/go-MentionsRelay/internal/bot/repository/orm"
	sqlrepo "github.com/central-university-dev/go-MentionsRelay/internal/bot/repository/sql"
	"github.com/central-university-dev/go-MentionsRelay/internal/config"
	"github.com/central-university-dev/go-MentionsRelay/internal/database"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/errors"
)

type Factory struct {
	db     *database.PostgresDB
	config *config.Config
	logger *slog.Logger
}

func NewFactory(db *database.PostgresDB, config *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		db:     db,
		config: config,
		logger: logger,
	}
}

func (f *Factory) CreateConfigRepository() (ConfigRepository, error) {
	switch f.config.DatabaseAccessType {
	case config.SquirrelAccess:
		f.logger.Info("Создание ORM (Squirrel) репозитория конфигураций")
		return orm.NewConfigRepository(f.db), nil
	case config.SQLAccess:
		f.logger.Info("Создание SQL репозитория конфигураций")
		return sqlrepo.NewConfigRepository(f.db), nil
	default:
		return nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}
