package object

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/object/repo"
)

var ErrObjectNotFound = errors.New("object not found")

// Service resolves external object uids to internal ids.
type Service struct {
	repo   *repo.ObjectRepo
	cache  Cache
	logger *zap.SugaredLogger
}

// NewService builds the resolver; cache may be nil.
func NewService(r *repo.ObjectRepo, cache Cache, logger *zap.SugaredLogger) *Service {
	return &Service{repo: r, cache: cache, logger: logger}
}

// Resolve returns the internal id for uid. A missing row and a stored id of
// zero both report ErrObjectNotFound. Cache failures fall through to the database.
func (s *Service) Resolve(ctx context.Context, uid int64) (int64, error) {
	if s.cache != nil {
		id, ok, err := s.cache.Get(ctx, uid)
		if err != nil {
			s.logger.Warnw("object cache read failed", "object_uid", uid, "err", err)
		} else if ok {
			return id, nil
		}
	}

	id, err := s.repo.IDByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrObjectNotFound
		}
		return 0, fmt.Errorf("resolve object %d: %w", uid, err)
	}
	if id == 0 {
		return 0, ErrObjectNotFound
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, uid, id); err != nil {
			s.logger.Warnw("object cache write failed", "object_uid", uid, "err", err)
		}
	}
	return id, nil
}
