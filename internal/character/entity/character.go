package entity

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/sqf"
)

// ProtocolVersion is appended to every character snapshot so game scripts
// can refuse a hive they do not understand.
const ProtocolVersion = 0.96

// Status tags lead every wire result.
const (
	StatusPass  = "PASS"
	StatusError = "ERROR"
)

// Defaults for a character with no prior life.
const (
	DefaultGeneration = 1
	DefaultHumanity   = 2500
)

// AliveRow is the projection of the newest alive character used on login.
type AliveRow struct {
	ID         int64          `db:"character_id"`
	Worldspace sql.NullString `db:"worldspace"`
	Inventory  sql.NullString `db:"inventory"`
	Backpack   sql.NullString `db:"backpack"`
	Model      sql.NullString `db:"model"`
	Datestamp  sql.NullTime   `db:"datestamp"`
	LastLogin  sql.NullTime   `db:"last_login"`
	LastAte    sql.NullTime   `db:"last_ate"`
	LastDrank  sql.NullTime   `db:"last_drank"`
}

// PreviousLife carries the attributes inherited from the newest dead character.
type PreviousLife struct {
	Generation int            `db:"generation"`
	Humanity   int            `db:"humanity"`
	Model      sql.NullString `db:"model"`
	InstanceID int            `db:"instance_id"`
}

// DetailRow is the full per-character state loaded on demand.
type DetailRow struct {
	Worldspace   sql.NullString `db:"worldspace"`
	Medical      sql.NullString `db:"medical"`
	Generation   int            `db:"generation"`
	KillsZ       int            `db:"kills_z"`
	HeadshotsZ   int            `db:"headshots_z"`
	KillsH       int            `db:"kills_h"`
	KillsB       int            `db:"kills_b"`
	CurrentState sql.NullString `db:"current_state"`
	Humanity     int            `db:"humanity"`
	InstanceID   int            `db:"instance_id"`
}

// NewCharacter is the row inserted when an identity has nobody alive.
// Composite fields are already encoded.
type NewCharacter struct {
	PlayerID   string
	InstanceID int
	Worldspace string
	Inventory  string
	Backpack   string
	Medical    string
	Generation int
	Humanity   int
	CreatedAt  time.Time
}

// Snapshot is the result of resolving the active character on connect.
// Worldspace, Inventory, Backpack and Survival are only meaningful when
// NewCharacter is false.
type Snapshot struct {
	IsNewPlayer  bool
	CharacterID  int64
	NewCharacter bool
	Worldspace   sqf.Value
	Inventory    sqf.Value
	Backpack     sqf.Value
	// Survival holds minutes alive, minutes since eating, minutes since drinking.
	Survival [3]int
	Model    string
	// Defaulted lists composite fields that failed to decode and were replaced.
	Defaulted []string
}

// Wire renders the positional result game scripts expect:
// PASS, isNewPlayer, id, [worldspace, inventory, backpack, survival,] model, version.
func (s *Snapshot) Wire() sqf.Array {
	out := sqf.Array{StatusPass, s.IsNewPlayer, strconv.FormatInt(s.CharacterID, 10)}
	if !s.NewCharacter {
		out = append(out,
			s.Worldspace,
			s.Inventory,
			s.Backpack,
			sqf.Array{float64(s.Survival[0]), float64(s.Survival[1]), float64(s.Survival[2])},
		)
	}
	return append(out, s.Model, ProtocolVersion)
}

// Details is the on-demand state of one character.
type Details struct {
	CharacterID  int64
	Worldspace   sqf.Value
	Medical      sqf.Value
	CurrentState sqf.Value
	Generation   int
	// Stats holds zombie kills, zombie headshots, human kills, bandit kills.
	Stats      [4]int
	Humanity   int
	InstanceID int
	Defaulted  []string
}

// Wire renders PASS, medical, stats, currentState, worldspace, humanity, instance.
func (d *Details) Wire() sqf.Array {
	return sqf.Array{
		StatusPass,
		d.Medical,
		sqf.Array{float64(d.Stats[0]), float64(d.Stats[1]), float64(d.Stats[2]), float64(d.Stats[3])},
		d.CurrentState,
		d.Worldspace,
		float64(d.Humanity),
		float64(d.InstanceID),
	}
}

// ErrorWire is the payload-less failure result.
func ErrorWire() sqf.Array { return sqf.Array{StatusError} }

// AssignKind says how a compiled value is applied to its column.
type AssignKind int

const (
	// Set replaces the column with the bound value.
	Set AssignKind = iota
	// Add increments the stored value by the bound magnitude.
	Add
	// Sub decrements the stored value by the bound magnitude.
	Sub
)

// Assignment is one compiled SET clause. Field is the logical field name;
// the repository maps it to a physical column.
type Assignment struct {
	Field string
	Kind  AssignKind
	Value any
}
