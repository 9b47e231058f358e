// Package app assembles the hive from configuration: database, statement
// cache, repositories, services, the optional object cache and the router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/character"
	charrepo "github.com/ovaphlow/pitchfork/service-hive-go/internal/character/repo"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/clock"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/fault"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/object"
	objectrepo "github.com/ovaphlow/pitchfork/service-hive-go/internal/object/repo"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/player"
	playerrepo "github.com/ovaphlow/pitchfork/service-hive-go/internal/player/repo"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-hive-go/pkg/database"
)

type App struct {
	DB      *sqlx.DB
	Stmts   *database.StmtCache
	Handler http.Handler
	// Faults receives the first storage fault seen by a handler.
	Faults *fault.Channel

	players    *playerrepo.PlayerRepo
	characters *charrepo.CharacterRepo
	objects    *objectrepo.ObjectRepo
	cache      *object.RedisCache
}

// New opens the database and wires every component. The caller owns the
// returned App and must Close it.
func New(dbCfg database.Config, cfg config.Config, clk clock.Clock, logger *zap.SugaredLogger) (*App, error) {
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	a := &App{DB: db, Stmts: database.NewStmtCache(db), Faults: fault.NewChannel()}

	dialect := database.DialectOf(dbCfg.Driver)
	a.players = playerrepo.NewPlayerRepo(db, a.Stmts, cfg.IDField)
	a.characters = charrepo.NewCharacterRepo(db, a.Stmts, dialect, cfg.IDField, cfg.WorldspaceField)
	a.objects = objectrepo.NewObjectRepo(db, a.Stmts, dialect)

	var cache object.Cache
	if cfg.RedisURL != "" {
		a.cache, err = object.NewRedisCache(cfg.RedisURL, cfg.ObjectCacheTTL)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		cache = a.cache
		logger.Infow("object cache enabled", "ttl", cfg.ObjectCacheTTL)
	}

	registrar := player.NewRegistrar(a.players, logger)
	chars := character.NewService(a.characters, registrar, clk, logger, character.Options{
		IncreaseGeneration: cfg.IncreaseGeneration,
	})
	objects := object.NewService(a.objects, cache, logger)

	a.Handler = router.RegisterRoutes(logger, router.Deps{
		Characters: character.NewHandler(chars, a.Faults, logger),
		Objects:    object.NewHandler(objects, logger),
		JWTSecret:  cfg.JWTSecret,
	})
	return a, nil
}

// EnsureSchema creates every table the hive reads or writes.
func (a *App) EnsureSchema(ctx context.Context) error {
	if err := a.players.EnsureTable(ctx); err != nil {
		return fmt.Errorf("player schema: %w", err)
	}
	if err := a.characters.EnsureTable(ctx); err != nil {
		return fmt.Errorf("character schema: %w", err)
	}
	if err := a.objects.EnsureTable(ctx); err != nil {
		return fmt.Errorf("object schema: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	errs = append(errs, a.Stmts.Close(), a.DB.Close())
	return errors.Join(errs...)
}
