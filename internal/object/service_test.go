package object

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/object/repo"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/testkit"
	"github.com/ovaphlow/pitchfork/service-hive-go/pkg/database"
)

type ServiceSuite struct {
	suite.Suite
	ctx   context.Context
	db    *sqlx.DB
	repo  *repo.ObjectRepo
	mr    *miniredis.Miniredis
	cache *RedisCache
	logs  *observer.ObservedLogs
	svc   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	db, stmts := testkit.OpenSQLite(s.T())
	s.db = db
	s.repo = repo.NewObjectRepo(db, stmts, database.SQLite)
	s.Require().NoError(s.repo.EnsureTable(s.ctx))

	s.mr = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })
	s.cache = NewRedisCacheWithClient(client, time.Minute)

	logger, logs := testkit.ObservedLogger()
	s.logs = logs
	s.svc = NewService(s.repo, s.cache, logger)
}

func (s *ServiceSuite) insertObject(id, uid int64) {
	_, err := s.db.Exec(`INSERT INTO "Object_DATA" ("ObjectID", "ObjectUID", "Classname") VALUES (?, ?, ?)`,
		id, uid, "TentStorage")
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestResolveKnownObject() {
	s.insertObject(42, 7712345678901)

	id, err := s.svc.Resolve(s.ctx, 7712345678901)
	s.Require().NoError(err)
	s.Equal(int64(42), id)

	cached, err := s.mr.Get("hive:object:7712345678901")
	s.Require().NoError(err)
	s.Equal("42", cached)
	s.True(s.mr.TTL("hive:object:7712345678901") > 0)
}

func (s *ServiceSuite) TestResolveUnknownObject() {
	_, err := s.svc.Resolve(s.ctx, 99)
	s.ErrorIs(err, ErrObjectNotFound)
	s.False(s.mr.Exists("hive:object:99"))
}

func (s *ServiceSuite) TestResolveZeroIDIsNotFound() {
	s.insertObject(0, 55)

	_, err := s.svc.Resolve(s.ctx, 55)
	s.ErrorIs(err, ErrObjectNotFound)
	s.False(s.mr.Exists("hive:object:55"))
}

func (s *ServiceSuite) TestResolveServedFromCache() {
	s.Require().NoError(s.mr.Set("hive:object:1001", "17"))

	id, err := s.svc.Resolve(s.ctx, 1001)
	s.Require().NoError(err)
	s.Equal(int64(17), id)
}

func (s *ServiceSuite) TestResolveFallsBackWhenCacheDown() {
	s.insertObject(5, 500)
	s.mr.Close()

	id, err := s.svc.Resolve(s.ctx, 500)
	s.Require().NoError(err)
	s.Equal(int64(5), id)
	s.Equal(1, s.logs.FilterMessage("object cache read failed").Len())
	s.Equal(1, s.logs.FilterMessage("object cache write failed").Len())
}

func (s *ServiceSuite) TestResolveWithoutCache() {
	s.insertObject(9, 900)
	logger, _ := testkit.ObservedLogger()
	svc := NewService(s.repo, nil, logger)

	id, err := svc.Resolve(s.ctx, 900)
	s.Require().NoError(err)
	s.Equal(int64(9), id)
}

func (s *ServiceSuite) TestNewRedisCacheRejectsBadURL() {
	_, err := NewRedisCache("not-a-url", time.Minute)
	s.Error(err)

	c, err := NewRedisCache("redis://"+s.mr.Addr(), time.Minute)
	s.Require().NoError(err)
	s.NoError(c.Close())
}
