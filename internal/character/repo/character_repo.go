package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/character/entity"
	"github.com/ovaphlow/pitchfork/service-hive-go/pkg/database"
)

// CharacterRepo provides data access for Character_DATA and Player_LOGIN.
type CharacterRepo struct {
	db      *sqlx.DB
	stmts   *database.StmtCache
	dialect database.Dialect
	idCol   string
	wsCol   string
}

// NewCharacterRepo quotes the configured identity and worldspace columns once.
func NewCharacterRepo(db *sqlx.DB, stmts *database.StmtCache, dialect database.Dialect, idField, wsField string) *CharacterRepo {
	return &CharacterRepo{
		db:      db,
		stmts:   stmts,
		dialect: dialect,
		idCol:   database.QuoteIdent(idField),
		wsCol:   database.QuoteIdent(wsField),
	}
}

// EnsureTable creates Character_DATA, Player_LOGIN and their indexes if not exists.
// The partial unique index keeps a second alive character from being inserted
// for an identity when two sessions race through character creation.
func (r *CharacterRepo) EnsureTable(ctx context.Context) error {
	pk, ts := `"CharacterID" BIGSERIAL PRIMARY KEY`, "TIMESTAMPTZ"
	loginPK := `"LoginID" BIGSERIAL PRIMARY KEY`
	if r.dialect == database.SQLite {
		pk, ts = `"CharacterID" INTEGER PRIMARY KEY AUTOINCREMENT`, "TIMESTAMP"
		loginPK = `"LoginID" INTEGER PRIMARY KEY AUTOINCREMENT`
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS "Character_DATA" (
  ` + pk + `,
  ` + r.idCol + ` VARCHAR(128) NOT NULL,
  "InstanceID" INT NOT NULL DEFAULT 0,
  ` + r.wsCol + ` TEXT NOT NULL DEFAULT '[]',
  "Inventory" TEXT,
  "Backpack" TEXT,
  "Medical" TEXT NOT NULL DEFAULT '[]',
  "Alive" BOOLEAN NOT NULL DEFAULT TRUE,
  "Generation" INT NOT NULL DEFAULT 1,
  "Humanity" INT NOT NULL DEFAULT 2500,
  "KillsZ" INT NOT NULL DEFAULT 0,
  "HeadshotsZ" INT NOT NULL DEFAULT 0,
  "KillsH" INT NOT NULL DEFAULT 0,
  "KillsB" INT NOT NULL DEFAULT 0,
  "DistanceFoot" INT NOT NULL DEFAULT 0,
  "Duration" INT NOT NULL DEFAULT 0,
  "CurrentState" TEXT NOT NULL DEFAULT '[]',
  "Model" VARCHAR(64),
  "Datestamp" ` + ts + `,
  "LastLogin" ` + ts + `,
  "LastAte" ` + ts + `,
  "LastDrank" ` + ts + `
)`,
		`CREATE INDEX IF NOT EXISTS "idx_character_player_alive" ON "Character_DATA" (` + r.idCol + `, "Alive")`,
		`CREATE UNIQUE INDEX IF NOT EXISTS "uq_character_one_alive" ON "Character_DATA" (` + r.idCol + `) WHERE "Alive"`,
		`CREATE TABLE IF NOT EXISTS "Player_LOGIN" (
  ` + loginPK + `,
  ` + r.idCol + ` VARCHAR(128) NOT NULL,
  "CharacterID" BIGINT NOT NULL,
  "Datestamp" ` + ts + ` NOT NULL,
  "Action" INT NOT NULL
)`,
	}
	for _, q := range ddl {
		if _, err := r.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// FindAlive returns the newest alive character of a player or sql.ErrNoRows.
func (r *CharacterRepo) FindAlive(ctx context.Context, playerID string) (*entity.AliveRow, error) {
	stmt, err := r.stmts.Get(ctx, "character.find_alive",
		`SELECT "CharacterID" AS character_id, `+r.wsCol+` AS worldspace, "Inventory" AS inventory,
		"Backpack" AS backpack, "Model" AS model, "Datestamp" AS datestamp, "LastLogin" AS last_login,
		"LastAte" AS last_ate, "LastDrank" AS last_drank
		FROM "Character_DATA" WHERE `+r.idCol+` = ? AND "Alive" = ? ORDER BY "CharacterID" DESC LIMIT 1`)
	if err != nil {
		return nil, err
	}
	var row entity.AliveRow
	if err := stmt.GetContext(ctx, &row, playerID, true); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindLatestDead returns the newest dead character of a player or sql.ErrNoRows.
func (r *CharacterRepo) FindLatestDead(ctx context.Context, playerID string) (*entity.PreviousLife, error) {
	stmt, err := r.stmts.Get(ctx, "character.find_latest_dead",
		`SELECT "Generation" AS generation, "Humanity" AS humanity, "Model" AS model, "InstanceID" AS instance_id
		FROM "Character_DATA" WHERE `+r.idCol+` = ? AND "Alive" = ? ORDER BY "CharacterID" DESC LIMIT 1`)
	if err != nil {
		return nil, err
	}
	var prev entity.PreviousLife
	if err := stmt.GetContext(ctx, &prev, playerID, false); err != nil {
		return nil, err
	}
	return &prev, nil
}

// NewestAliveID reads back the id assigned to the alive character of a player.
func (r *CharacterRepo) NewestAliveID(ctx context.Context, playerID string) (int64, error) {
	stmt, err := r.stmts.Get(ctx, "character.newest_alive_id",
		`SELECT "CharacterID" FROM "Character_DATA" WHERE `+r.idCol+` = ? AND "Alive" = ? ORDER BY "CharacterID" DESC LIMIT 1`)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := stmt.GetContext(ctx, &id, playerID, true); err != nil {
		return 0, err
	}
	return id, nil
}

// Insert stores a new alive character. The statement runs outside any
// transaction, so the row is committed when Insert returns.
func (r *CharacterRepo) Insert(ctx context.Context, c *entity.NewCharacter) error {
	stmt, err := r.stmts.Get(ctx, "character.insert",
		`INSERT INTO "Character_DATA" (`+r.idCol+`, "InstanceID", `+r.wsCol+`, "Inventory", "Backpack", "Medical",
		"Generation", "Datestamp", "LastLogin", "LastAte", "LastDrank", "Humanity", "Alive")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	ts := c.CreatedAt
	_, err = stmt.ExecContext(ctx, c.PlayerID, c.InstanceID, c.Worldspace, c.Inventory, c.Backpack, c.Medical,
		c.Generation, ts, ts, ts, ts, c.Humanity, true)
	return err
}

// TouchLogin stamps LastLogin.
func (r *CharacterRepo) TouchLogin(ctx context.Context, id int64, now time.Time) error {
	stmt, err := r.stmts.Get(ctx, "character.touch_login",
		`UPDATE "Character_DATA" SET "LastLogin" = ? WHERE "CharacterID" = ?`)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, now, id)
	return err
}

// Details loads the full state of one character or sql.ErrNoRows.
func (r *CharacterRepo) Details(ctx context.Context, id int64) (*entity.DetailRow, error) {
	stmt, err := r.stmts.Get(ctx, "character.details",
		`SELECT `+r.wsCol+` AS worldspace, "Medical" AS medical, "Generation" AS generation,
		"KillsZ" AS kills_z, "HeadshotsZ" AS headshots_z, "KillsH" AS kills_h, "KillsB" AS kills_b,
		"CurrentState" AS current_state, "Humanity" AS humanity, "InstanceID" AS instance_id
		FROM "Character_DATA" WHERE "CharacterID" = ?`)
	if err != nil {
		return nil, err
	}
	var row entity.DetailRow
	if err := stmt.GetContext(ctx, &row, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// Apply issues a single UPDATE with every compiled assignment plus the owning
// instance. Accumulators are relative to the stored value so concurrent
// deltas add up instead of overwriting each other.
func (r *CharacterRepo) Apply(ctx context.Context, id int64, instanceID int, set []entity.Assignment) error {
	if len(set) == 0 {
		return nil
	}
	clauses := make([]string, 0, len(set)+1)
	args := make([]any, 0, len(set)+2)
	for _, a := range set {
		col := r.column(a.Field)
		switch a.Kind {
		case entity.Add:
			clauses = append(clauses, col+" = "+col+" + ?")
		case entity.Sub:
			clauses = append(clauses, col+" = "+col+" - ?")
		default:
			clauses = append(clauses, col+" = ?")
		}
		args = append(args, a.Value)
	}
	clauses = append(clauses, `"InstanceID" = ?`)
	args = append(args, instanceID, id)

	q := `UPDATE "Character_DATA" SET ` + strings.Join(clauses, ", ") + ` WHERE "CharacterID" = ?`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(q), args...); err != nil {
		return fmt.Errorf("update character %d: %w", id, err)
	}
	return nil
}

// column maps a logical field name to its quoted column.
func (r *CharacterRepo) column(field string) string {
	if field == "Worldspace" {
		return r.wsCol
	}
	return database.QuoteIdent(field)
}

// SeedInventory replaces inventory and backpack.
func (r *CharacterRepo) SeedInventory(ctx context.Context, id int64, inventory, backpack string) error {
	stmt, err := r.stmts.Get(ctx, "character.seed_inventory",
		`UPDATE "Character_DATA" SET "Inventory" = ?, "Backpack" = ? WHERE "CharacterID" = ?`)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, inventory, backpack, id)
	return err
}

// Kill flips an alive character to dead and sets LastLogin. Returns the
// number of rows changed: 0 when the character was already dead.
func (r *CharacterRepo) Kill(ctx context.Context, id int64, lastLogin time.Time) (int64, error) {
	stmt, err := r.stmts.Get(ctx, "character.kill",
		`UPDATE "Character_DATA" SET "Alive" = ?, "LastLogin" = ? WHERE "CharacterID" = ? AND "Alive" = ?`)
	if err != nil {
		return 0, err
	}
	res, err := stmt.ExecContext(ctx, false, lastLogin, id, true)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RecordLogin appends one Player_LOGIN row.
func (r *CharacterRepo) RecordLogin(ctx context.Context, playerID string, characterID int64, action int, at time.Time) error {
	stmt, err := r.stmts.Get(ctx, "login.insert",
		`INSERT INTO "Player_LOGIN" (`+r.idCol+`, "CharacterID", "Datestamp", "Action") VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, playerID, characterID, at, action)
	return err
}
