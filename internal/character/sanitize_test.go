package character

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/sqf"
)

func TestSanitizeInventory(t *testing.T) {
	inv := sqf.Array{
		sqf.Array{"AK_47_M", 7.0, nil, sqf.Array{"nested", sqf.Array{}}},
		sqf.Array{"30Rnd_762x39_AK47", sqf.Array{"30Rnd_762x39_AK47", 11.0}, sqf.Array{12.0, "swapped"}, true},
		"loose",
	}
	got := SanitizeInventory(inv)
	assert.Equal(t, sqf.Array{
		sqf.Array{"AK_47_M"},
		sqf.Array{"30Rnd_762x39_AK47", sqf.Array{"30Rnd_762x39_AK47", 11.0}},
		"loose",
	}, got)
}

func TestSanitizeInventoryKeepsValid(t *testing.T) {
	inv := sqf.Array{sqf.Array{"ItemMap"}, sqf.Array{}}
	assert.Equal(t, sqf.Array{sqf.Array{"ItemMap"}, sqf.Array{}}, SanitizeInventory(inv))
	assert.Equal(t, sqf.Array{}, SanitizeInventory(sqf.Array{}))
}
