package character

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/character/entity"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/clock"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/fault"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/sqf"
	"github.com/ovaphlow/pitchfork/service-hive-go/pkg/database"
)

var (
	ErrCharacterNotFound = errors.New("character not found")
	ErrCreateFailed      = errors.New("character could not be created")
)

// PlayerRegistrar is the part of the player service the resolver needs.
type PlayerRegistrar interface {
	Register(ctx context.Context, identity, name string) (bool, error)
}

// Store is the Character_DATA and Player_LOGIN access the service needs;
// *repo.CharacterRepo implements it.
type Store interface {
	FindAlive(ctx context.Context, playerID string) (*entity.AliveRow, error)
	FindLatestDead(ctx context.Context, playerID string) (*entity.PreviousLife, error)
	NewestAliveID(ctx context.Context, playerID string) (int64, error)
	Insert(ctx context.Context, c *entity.NewCharacter) error
	TouchLogin(ctx context.Context, id int64, now time.Time) error
	Details(ctx context.Context, id int64) (*entity.DetailRow, error)
	Apply(ctx context.Context, id int64, instanceID int, set []entity.Assignment) error
	SeedInventory(ctx context.Context, id int64, inventory, backpack string) error
	Kill(ctx context.Context, id int64, lastLogin time.Time) (int64, error)
	RecordLogin(ctx context.Context, playerID string, characterID int64, action int, at time.Time) error
}

// Options tune character creation.
type Options struct {
	// IncreaseGeneration bumps the inherited generation on every new life.
	IncreaseGeneration bool
}

// Service resolves, loads and mutates characters.
type Service struct {
	repo    Store
	players PlayerRegistrar
	clock   clock.Clock
	logger  *zap.SugaredLogger
	opts    Options
}

func NewService(r Store, players PlayerRegistrar, clk clock.Clock, logger *zap.SugaredLogger, opts Options) *Service {
	if clk == nil {
		clk = clock.New()
	}
	return &Service{repo: r, players: players, clock: clk, logger: logger, opts: opts}
}

// ResolveActive registers the player and returns its alive character,
// creating one that inherits generation, humanity and model from the
// previous life when nobody is alive.
func (s *Service) ResolveActive(ctx context.Context, identity string, serverID int, name string) (*entity.Snapshot, error) {
	isNew, err := s.players.Register(ctx, identity, name)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.FindAlive(ctx, identity)
	switch {
	case err == nil:
		snap, err := s.loadExisting(ctx, row)
		if err != nil {
			return nil, err
		}
		snap.IsNewPlayer = isNew
		return snap, nil
	case errors.Is(err, sql.ErrNoRows):
		snap, err := s.create(ctx, identity, serverID, name)
		if err != nil {
			return nil, err
		}
		snap.IsNewPlayer = isNew
		return snap, nil
	default:
		return nil, fmt.Errorf("find alive character for %s: %w", identity, err)
	}
}

func (s *Service) loadExisting(ctx context.Context, row *entity.AliveRow) (*entity.Snapshot, error) {
	now := s.clock.Now()
	snap := &entity.Snapshot{CharacterID: row.ID}
	d := decoder{logger: s.logger, characterID: row.ID, stage: "login"}

	snap.Worldspace = d.composite("Worldspace", row.Worldspace.String)
	snap.Inventory = sqf.EmptyArray()
	if row.Inventory.Valid {
		inv := d.composite("Inventory", row.Inventory.String)
		if arr, ok := inv.(sqf.Array); ok {
			inv = SanitizeInventory(arr)
		}
		snap.Inventory = inv
	}
	snap.Backpack = sqf.EmptyArray()
	if row.Backpack.Valid {
		snap.Backpack = d.composite("Backpack", row.Backpack.String)
	}
	snap.Survival = [3]int{
		minutesBetween(row.Datestamp, row.LastLogin.Time, row.LastLogin.Valid),
		minutesBetween(row.LastAte, now, true),
		minutesBetween(row.LastDrank, now, true),
	}
	snap.Model = decodeModel(row.Model)
	snap.Defaulted = d.defaulted

	if err := s.repo.TouchLogin(ctx, row.ID, now); err != nil {
		return nil, fault.Wrap("stamp last login", err)
	}
	return snap, nil
}

func (s *Service) create(ctx context.Context, identity string, serverID int, name string) (*entity.Snapshot, error) {
	generation, humanity, model := entity.DefaultGeneration, entity.DefaultHumanity, ""
	prev, err := s.repo.FindLatestDead(ctx, identity)
	switch {
	case err == nil:
		generation = prev.Generation
		if s.opts.IncreaseGeneration {
			generation++
		}
		humanity = prev.Humanity
		model = decodeModel(prev.Model)
	case errors.Is(err, sql.ErrNoRows):
	default:
		s.logger.Errorw("error loading previous character", "player_id", identity, "err", err)
		return nil, fmt.Errorf("%w: previous life of %s: %w", ErrCreateFailed, identity, err)
	}

	empty := sqf.Encode(sqf.EmptyArray())
	err = s.repo.Insert(ctx, &entity.NewCharacter{
		PlayerID:   identity,
		InstanceID: serverID,
		Worldspace: empty,
		Inventory:  empty,
		Backpack:   empty,
		Medical:    empty,
		Generation: generation,
		Humanity:   humanity,
		CreatedAt:  s.clock.Now(),
	})
	if err != nil {
		if !database.IsUniqueViolation(err) {
			s.logger.Errorw("error creating character", "player_id", identity, "err", err)
			return nil, fmt.Errorf("%w: insert for %s: %w", ErrCreateFailed, identity, err)
		}
		// another session created the character first; read back theirs
		s.logger.Warnw("concurrent character creation", "player_id", identity)
	}

	id, err := s.repo.NewestAliveID(ctx, identity)
	if err != nil {
		s.logger.Errorw("error fetching created character", "player_id", identity, "err", err)
		return nil, fmt.Errorf("%w: read back for %s: %w", ErrCreateFailed, identity, err)
	}
	s.logger.Infow("created a new character", "character_id", id, "player_id", identity, "name", name,
		"generation", generation, "humanity", humanity)

	return &entity.Snapshot{CharacterID: id, NewCharacter: true, Model: model}, nil
}

// FetchDetails loads the on-demand state of a character. Composite fields
// that fail to decode default to an empty list.
func (s *Service) FetchDetails(ctx context.Context, characterID int64) (*entity.Details, error) {
	row, err := s.repo.Details(ctx, characterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("load character %d: %w", characterID, err)
	}
	d := decoder{logger: s.logger, characterID: characterID, stage: "detail load"}
	det := &entity.Details{
		CharacterID: characterID,
		Generation:  row.Generation,
		Stats:       [4]int{row.KillsZ, row.HeadshotsZ, row.KillsH, row.KillsB},
		Humanity:    row.Humanity,
		InstanceID:  row.InstanceID,
	}
	det.Worldspace = d.composite("Worldspace", row.Worldspace.String)
	det.Medical = d.composite("Medical", row.Medical.String)
	det.CurrentState = d.composite("CurrentState", row.CurrentState.String)
	det.Defaulted = d.defaulted
	return det, nil
}

// ApplyUpdate compiles deltas and writes them in one statement that also
// claims the character for serverID. An empty compilation writes nothing.
func (s *Service) ApplyUpdate(ctx context.Context, characterID int64, serverID int, deltas map[string]sqf.Value) error {
	set := Compile(deltas, s.clock.Now())
	if len(set) == 0 {
		return nil
	}
	return s.repo.Apply(ctx, characterID, serverID, set)
}

// decoder decodes composite columns, replacing anything malformed with an
// empty list and remembering which fields it replaced.
type decoder struct {
	logger      *zap.SugaredLogger
	characterID int64
	stage       string
	defaulted   []string
}

func (d *decoder) composite(field, raw string) sqf.Value {
	v, err := sqf.Decode(raw)
	if err != nil {
		d.logger.Warnw("invalid "+field, "stage", d.stage, "character_id", d.characterID, "value", raw, "err", err)
		d.defaulted = append(d.defaulted, field)
		return sqf.EmptyArray()
	}
	return v
}

// decodeModel accepts the model stored either encoded ("Survivor2_DZ" with
// quotes) or raw.
func decodeModel(raw sql.NullString) string {
	if !raw.Valid {
		return ""
	}
	if v, err := sqf.Decode(raw.String); err == nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return raw.String
}

// minutesBetween truncates like the game's survival counters; a missing
// timestamp counts as zero.
func minutesBetween(from sql.NullTime, to time.Time, toValid bool) int {
	if !from.Valid || !toValid {
		return 0
	}
	return int(to.Sub(from.Time) / time.Minute)
}
