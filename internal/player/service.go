package player

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/fault"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/player/entity"
	"github.com/ovaphlow/pitchfork/service-hive-go/pkg/database"
)

// Store is the Player_DATA access the registrar needs; *repo.PlayerRepo implements it.
type Store interface {
	Get(ctx context.Context, id string) (*entity.Player, error)
	Create(ctx context.Context, p *entity.Player) error
	Rename(ctx context.Context, id, name string) error
}

// Registrar keeps Player_DATA in step with the identities that connect.
type Registrar struct {
	repo   Store
	logger *zap.SugaredLogger
}

func NewRegistrar(r Store, logger *zap.SugaredLogger) *Registrar {
	return &Registrar{repo: r, logger: logger}
}

// Register upserts the identity and reports whether it was seen for the first time.
// A changed name is corrected in place; an unchanged one causes no write.
// Failed writes are faults: the lookup just succeeded, so the store is broken.
// Losing an insert race to another session for the same identity is not a
// failure; the row that session wrote is used instead.
func (s *Registrar) Register(ctx context.Context, identity, name string) (bool, error) {
	existing, err := s.repo.Get(ctx, identity)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("lookup player %s: %w", identity, err)
		}
		err = s.repo.Create(ctx, &entity.Player{ID: identity, Name: name})
		if err == nil {
			s.logger.Infow("created a new player", "player_id", identity, "name", name)
			return true, nil
		}
		if !database.IsUniqueViolation(err) {
			return false, fault.Wrap("create player", err)
		}
		s.logger.Warnw("concurrent player registration", "player_id", identity)
		existing, err = s.repo.Get(ctx, identity)
		if err != nil {
			return false, fault.Wrap("read back player", err)
		}
	}

	if existing.Name != name {
		if err := s.repo.Rename(ctx, identity, name); err != nil {
			return false, fault.Wrap("rename player", err)
		}
		s.logger.Infow("changed name of player", "player_id", identity, "from", existing.Name, "to", name)
	}
	return false, nil
}
