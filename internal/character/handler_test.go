package character

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/character/repo"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/clock"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/fault"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/player"
	playerrepo "github.com/ovaphlow/pitchfork/service-hive-go/internal/player/repo"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/sqf"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/testkit"
	"github.com/ovaphlow/pitchfork/service-hive-go/pkg/database"
)

type HandlerSuite struct {
	suite.Suite
	db       *sqlx.DB
	svc      *Service
	handler  *Handler
	logs     *observer.ObservedLogs
	reported []error
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctx := context.Background()
	db, stmts := testkit.OpenSQLite(s.T())
	s.db = db
	players := playerrepo.NewPlayerRepo(db, stmts, "PlayerUID")
	s.Require().NoError(players.EnsureTable(ctx))
	chars := repo.NewCharacterRepo(db, stmts, database.SQLite, "PlayerUID", "Worldspace")
	s.Require().NoError(chars.EnsureTable(ctx))

	logger, logs := testkit.ObservedLogger()
	s.logs = logs
	s.svc = NewService(chars, player.NewRegistrar(players, logger), clock.NewFixed(t0), logger, Options{})
	s.reported = nil
	s.handler = NewHandler(s.svc, fault.ReporterFunc(func(err error) {
		s.reported = append(s.reported, err)
	}), logger)
}

func (s *HandlerSuite) do(h http.HandlerFunc, method, id, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/hive/characters/"+id, strings.NewReader(body))
	if id != "" {
		req.SetPathValue("id", id)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func (s *HandlerSuite) TestResolveNewPlayer() {
	rec := s.do(s.handler.Resolve, http.MethodPost, "", `{"identity":"p1","server_id":3,"name":"Alice"}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(sqf.ContentType, rec.Header().Get("Content-Type"))
	s.Equal(`["PASS",true,"1","",0.96]`, rec.Body.String())

	rec = s.do(s.handler.Resolve, http.MethodPost, "", `{"identity":"p1","server_id":3,"name":"Alice"}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(`["PASS",false,"1",[],[],[],[0,0,0],"",0.96]`, rec.Body.String())
}

func (s *HandlerSuite) TestResolveRejectsBadPayload() {
	rec := s.do(s.handler.Resolve, http.MethodPost, "", `{"identity":`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(`["ERROR"]`, rec.Body.String())

	rec = s.do(s.handler.Resolve, http.MethodPost, "", `{"name":"nobody"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestDetails() {
	s.do(s.handler.Resolve, http.MethodPost, "", `{"identity":"p1","server_id":3,"name":"Alice"}`)

	rec := s.do(s.handler.Details, http.MethodGet, "1", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(`["PASS",[],[0,0,0,0],[],[],2500,3]`, rec.Body.String())

	rec = s.do(s.handler.Details, http.MethodGet, "2", "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(`["ERROR"]`, rec.Body.String())

	rec = s.do(s.handler.Details, http.MethodGet, "abc", "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestUpdateSeedKillAndLogin() {
	s.do(s.handler.Resolve, http.MethodPost, "", `{"identity":"p1","server_id":3,"name":"Alice"}`)

	rec := s.do(s.handler.Update, http.MethodPost, "1",
		`{"server_id":4,"fields":{"Worldspace":[90,[10.5,20,0]],"KillsZ":2,"JustAte":true}}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("true", rec.Body.String())

	rec = s.do(s.handler.Seed, http.MethodPost, "1", `{"inventory":[["ItemMap"],["ItemBandage"]],"backpack":["DZ_Patrol_Pack_EP1"]}`)
	s.Equal("true", rec.Body.String())

	rec = s.do(s.handler.Details, http.MethodGet, "1", "")
	s.Equal(`["PASS",[],[2,0,0,0],[],[90,[10.5,20,0]],2500,4]`, rec.Body.String())

	var inv string
	s.Require().NoError(s.db.Get(&inv, `SELECT "Inventory" FROM "Character_DATA" WHERE "CharacterID" = 1`))
	s.Equal(`[["ItemMap"],["ItemBandage"]]`, inv)

	rec = s.do(s.handler.Kill, http.MethodPost, "1", `{"duration":30}`)
	s.Equal("true", rec.Body.String())
	rec = s.do(s.handler.Kill, http.MethodPost, "1", `{"duration":30}`)
	s.Equal("true", rec.Body.String())

	rec = s.do(s.handler.Login, http.MethodPost, "", `{"identity":"p1","character_id":1,"action":2}`)
	s.Equal("true", rec.Body.String())
	s.Empty(s.reported)
}

func (s *HandlerSuite) TestUpdateRejectsBadPayload() {
	rec := s.do(s.handler.Update, http.MethodPost, "1", `[]`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("false", rec.Body.String())
}

func (s *HandlerSuite) TestFatalWriteIsReported() {
	s.do(s.handler.Resolve, http.MethodPost, "", `{"identity":"p1","server_id":3,"name":"Alice"}`)
	_, err := s.db.Exec(`CREATE TRIGGER frozen BEFORE UPDATE ON "Character_DATA"
BEGIN SELECT RAISE(ABORT, 'frozen'); END`)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/hive/characters/1/kill", strings.NewReader(`{"duration":30}`))
	req.SetPathValue("id", "1")
	req = req.WithContext(auth.WithServer(req.Context(), "chernarus-1"))
	rec := httptest.NewRecorder()
	s.handler.Kill(rec, req)

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("false", rec.Body.String())
	s.Require().Len(s.reported, 1)
	s.True(fault.IsFatal(s.reported[0]))

	entries := s.logs.FilterMessage("mark dead hit a storage fault").All()
	s.Require().Len(entries, 1)
	s.Equal("chernarus-1", entries[0].ContextMap()["server"])
}

func (s *HandlerSuite) TestNonFatalFailureIsNotReported() {
	s.do(s.handler.Resolve, http.MethodPost, "", `{"identity":"p1","server_id":3,"name":"Alice"}`)
	_, err := s.db.Exec(`CREATE TRIGGER frozen BEFORE UPDATE ON "Character_DATA"
BEGIN SELECT RAISE(ABORT, 'frozen'); END`)
	s.Require().NoError(err)

	rec := s.do(s.handler.Update, http.MethodPost, "1", `{"server_id":1,"fields":{"KillsZ":1}}`)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("false", rec.Body.String())
	s.Empty(s.reported)

	entries := s.logs.FilterMessage("apply update failed").All()
	s.Require().Len(entries, 1)
	s.Equal("", entries[0].ContextMap()["server"])
}
