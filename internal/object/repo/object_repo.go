package repo

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/ovaphlow/pitchfork/service-hive-go/pkg/database"
)

// ObjectRepo reads Object_DATA.
type ObjectRepo struct {
	db      *sqlx.DB
	stmts   *database.StmtCache
	dialect database.Dialect
}

func NewObjectRepo(db *sqlx.DB, stmts *database.StmtCache, dialect database.Dialect) *ObjectRepo {
	return &ObjectRepo{db: db, stmts: stmts, dialect: dialect}
}

// EnsureTable creates Object_DATA if not exists. Objects are written by the
// world-state side of the hive; this table shape is the part read here.
func (r *ObjectRepo) EnsureTable(ctx context.Context) error {
	pk := `"ObjectID" BIGSERIAL PRIMARY KEY`
	if r.dialect == database.SQLite {
		pk = `"ObjectID" INTEGER PRIMARY KEY AUTOINCREMENT`
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS "Object_DATA" (
  ` + pk + `,
  "ObjectUID" BIGINT NOT NULL DEFAULT 0,
  "Instance" INT NOT NULL DEFAULT 0,
  "Classname" VARCHAR(50)
)`,
		`CREATE INDEX IF NOT EXISTS "idx_object_uid" ON "Object_DATA" ("ObjectUID")`,
	}
	for _, q := range ddl {
		if _, err := r.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// IDByUID returns the internal id of an object or sql.ErrNoRows.
func (r *ObjectRepo) IDByUID(ctx context.Context, uid int64) (int64, error) {
	stmt, err := r.stmts.Get(ctx, "object.id_by_uid",
		`SELECT "ObjectID" FROM "Object_DATA" WHERE "ObjectUID" = ? LIMIT 1`)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := stmt.GetContext(ctx, &id, uid); err != nil {
		return 0, err
	}
	return id, nil
}
