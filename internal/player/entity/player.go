package entity

// Player is one row of Player_DATA: a stable identity and its last known name.
type Player struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}
