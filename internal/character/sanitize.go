package character

import "github.com/ovaphlow/pitchfork/service-hive-go/internal/sqf"

// SanitizeInventory drops malformed entries from a decoded inventory.
//
// An inventory is a list of sections (weapons, magazines, ...). Inside each
// list section an entry must be a class name or a [className, count] pair;
// anything else is removed. Sections that are not lists are left alone.
func SanitizeInventory(inv sqf.Array) sqf.Array {
	for i, section := range inv {
		items, ok := section.(sqf.Array)
		if !ok {
			continue
		}
		kept := make(sqf.Array, 0, len(items))
		for _, item := range items {
			if validSlot(item) {
				kept = append(kept, item)
			}
		}
		inv[i] = kept
	}
	return inv
}

func validSlot(v sqf.Value) bool {
	switch t := v.(type) {
	case string:
		return true
	case sqf.Array:
		if len(t) != 2 {
			return false
		}
		if _, ok := t[0].(string); !ok {
			return false
		}
		_, ok := t[1].(float64)
		return ok
	}
	return false
}
