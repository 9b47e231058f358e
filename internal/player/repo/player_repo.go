package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/player/entity"
	"github.com/ovaphlow/pitchfork/service-hive-go/pkg/database"
)

// PlayerRepo provides data access for Player_DATA using sqlx.
type PlayerRepo struct {
	db    *sqlx.DB
	stmts *database.StmtCache
	idCol string
}

// NewPlayerRepo quotes the configured identity column once; every query reuses it.
func NewPlayerRepo(db *sqlx.DB, stmts *database.StmtCache, idField string) *PlayerRepo {
	return &PlayerRepo{db: db, stmts: stmts, idCol: database.QuoteIdent(idField)}
}

// EnsureTable creates Player_DATA if not exists (idempotent).
func (r *PlayerRepo) EnsureTable(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS "Player_DATA" (
  ` + r.idCol + ` VARCHAR(128) PRIMARY KEY,
  "PlayerName" VARCHAR(128) NOT NULL DEFAULT '',
  "PlayerSex" INT NOT NULL DEFAULT 0
)`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Get returns the player with the given identity or sql.ErrNoRows.
func (r *PlayerRepo) Get(ctx context.Context, id string) (*entity.Player, error) {
	stmt, err := r.stmts.Get(ctx, "player.get",
		`SELECT `+r.idCol+` AS id, "PlayerName" AS name FROM "Player_DATA" WHERE `+r.idCol+` = ?`)
	if err != nil {
		return nil, err
	}
	var p entity.Player
	if err := stmt.GetContext(ctx, &p, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new player row.
func (r *PlayerRepo) Create(ctx context.Context, p *entity.Player) error {
	stmt, err := r.stmts.Get(ctx, "player.create",
		`INSERT INTO "Player_DATA" (`+r.idCol+`, "PlayerName") VALUES (?, ?)`)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, p.ID, p.Name); err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// Rename overwrites the stored display name.
func (r *PlayerRepo) Rename(ctx context.Context, id, name string) error {
	stmt, err := r.stmts.Get(ctx, "player.rename",
		`UPDATE "Player_DATA" SET "PlayerName" = ? WHERE `+r.idCol+` = ?`)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, name, id); err != nil {
		return fmt.Errorf("rename player: %w", err)
	}
	return nil
}
