package character

import (
	"math"
	"sort"
	"time"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/character/entity"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/sqf"
)

// field classes understood by Compile
var (
	compositeFields = map[string]bool{
		"Worldspace":   true,
		"Inventory":    true,
		"Backpack":     true,
		"Medical":      true,
		"CurrentState": true,
	}
	timestampTriggers = map[string]string{
		"JustAte":   "LastAte",
		"JustDrank": "LastDrank",
	}
	accumulatorFields = map[string]bool{
		"KillsZ":       true,
		"HeadshotsZ":   true,
		"DistanceFoot": true,
		"Duration":     true,
		"KillsH":       true,
		"KillsB":       true,
		"Humanity":     true,
	}
)

// Compile turns a set of named deltas into column assignments.
//
// Composites are re-encoded and replace the column. JustAte/JustDrank set
// LastAte/LastDrank to now when true. Accumulators are truncated to an
// integer and become relative increments; zero, non-finite values and
// values outside the 32-bit column range are dropped. Model replaces
// the column when it is a string. Unknown names and values of the wrong
// shape are ignored. The result is ordered by field name.
func Compile(deltas map[string]sqf.Value, now time.Time) []entity.Assignment {
	out := make([]entity.Assignment, 0, len(deltas))
	for name, val := range deltas {
		switch {
		case compositeFields[name]:
			out = append(out, entity.Assignment{Field: name, Kind: entity.Set, Value: sqf.Encode(val)})
		case timestampTriggers[name] != "":
			if b, ok := val.(bool); ok && b {
				out = append(out, entity.Assignment{Field: timestampTriggers[name], Kind: entity.Set, Value: now})
			}
		case accumulatorFields[name]:
			f, ok := sqf.Number(val)
			if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
				continue
			}
			f = math.Trunc(f)
			// counters are INT columns; a delta that cannot fit is garbage
			if f > math.MaxInt32 || f < math.MinInt32 {
				continue
			}
			n := int64(f)
			switch {
			case n > 0:
				out = append(out, entity.Assignment{Field: name, Kind: entity.Add, Value: n})
			case n < 0:
				out = append(out, entity.Assignment{Field: name, Kind: entity.Sub, Value: -n})
			}
		case name == "Model":
			if s, ok := val.(string); ok {
				out = append(out, entity.Assignment{Field: name, Kind: entity.Set, Value: s})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}
