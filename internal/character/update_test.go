package character

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/character/entity"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/sqf"
)

func TestCompileFieldClasses(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := Compile(map[string]sqf.Value{
		"Worldspace":   sqf.Array{90.0, sqf.Array{1.0, 2.0, 0.0}},
		"CurrentState": sqf.Array{},
		"JustAte":      true,
		"JustDrank":    false,
		"KillsZ":       2.7,
		"Humanity":     -120.0,
		"HeadshotsZ":   0.4,
		"Duration":     "15",
		"Model":        "Survivor3_DZ",
		"PlayerMorale": 5.0,
	}, now)

	assert.Equal(t, []entity.Assignment{
		{Field: "CurrentState", Kind: entity.Set, Value: "[]"},
		{Field: "Duration", Kind: entity.Add, Value: int64(15)},
		{Field: "Humanity", Kind: entity.Sub, Value: int64(120)},
		{Field: "KillsZ", Kind: entity.Add, Value: int64(2)},
		{Field: "LastAte", Kind: entity.Set, Value: now},
		{Field: "Model", Kind: entity.Set, Value: "Survivor3_DZ"},
		{Field: "Worldspace", Kind: entity.Set, Value: "[90,[1,2,0]]"},
	}, got)
}

func TestCompileDropsNoops(t *testing.T) {
	got := Compile(map[string]sqf.Value{
		"KillsZ":    0.0,
		"KillsB":    -0.9,
		"JustDrank": false,
		"JustAte":   "yes",
		"Model":     12.0,
		"KillsH":    sqf.Array{1.0},
	}, time.Now())
	assert.Empty(t, got)
	assert.Empty(t, Compile(nil, time.Now()))
}

func TestCompileDropsOutOfRangeAccumulators(t *testing.T) {
	for _, v := range []sqf.Value{1e30, -1e30, "NaN", "Inf", "-Inf", 2147483648.0, -2147483649.0} {
		got := Compile(map[string]sqf.Value{"KillsZ": v}, time.Now())
		assert.Empty(t, got, "value %v", v)
	}

	got := Compile(map[string]sqf.Value{"KillsZ": 2147483647.9, "Humanity": -2147483648.0}, time.Now())
	assert.Equal(t, []entity.Assignment{
		{Field: "Humanity", Kind: entity.Sub, Value: int64(2147483648)},
		{Field: "KillsZ", Kind: entity.Add, Value: int64(2147483647)},
	}, got)
}
