package roster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/musileague/backend/internal/domain/tier"
)

// ValidationError carries per-field messages for a rejected
// submission. Keys are slot_1..slot_5 and captain.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "roster validation failed"
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "roster validation failed: " + strings.Join(parts, "; ")
}

// Validate checks a proposed roster against the per-slot tier table.
// previous is the user's last committed roster, nil for a first save.
//
// A slot whose artist matches the previous committed artist in the
// same position is grandfathered: accepted unconditionally, so tier
// drift never invalidates a standing pick. Changed slots must carry
// an artist whose current tier matches the slot requirement. The
// captain, when set, must be one of the five slot artists.
//
// The returned map is empty on success; Validate never fails with an
// ordinary error, the caller decides what to do with the field map.
func Validate(proposed [SlotCount]SlotAssignment, captainID string, previous *Roster, bounds tier.Bounds) map[string]string {
	fields := make(map[string]string)
	requirements := tier.SlotRequirements()
	seen := make(map[string]int, SlotCount)

	for i, slot := range proposed {
		key := SlotKey(i)

		if slot.IsEmpty() {
			fields[key] = "an artist must be selected for this slot"
			continue
		}

		if pos, dup := seen[slot.ArtistID]; dup {
			fields[key] = fmt.Sprintf("artist %s already occupies slot %d", slot.ArtistID, pos+1)
			continue
		}
		seen[slot.ArtistID] = i

		if previous != nil && previous.Slots[i].ArtistID == slot.ArtistID {
			// Grandfathered: the standing pick keeps its slot even if
			// popularity has drifted out of the required band.
			continue
		}

		required := requirements[i]
		if slot.Tier != required {
			fields[key] = fmt.Sprintf("slot requires a %s artist (%s), got %s", required, bounds.Range(required), slot.Tier)
		}
	}

	if captainID != "" {
		if _, ok := seen[captainID]; !ok {
			fields[CaptainKey] = fmt.Sprintf("captain %s must be one of the five selected artists", captainID)
		}
	}

	return fields
}
