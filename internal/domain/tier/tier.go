package tier

import "fmt"

// Tier is a popularity-derived artist class. Every roster slot
// requires a specific tier unless the pick is grandfathered.
type Tier string

const (
	Flagship Tier = "FLAGSHIP"
	Mid      Tier = "MID"
	Emerging Tier = "EMERGING"
)

var AllTiers = map[Tier]struct{}{
	Flagship: {},
	Mid:      {},
	Emerging: {},
}

// Bounds holds the popularity thresholds separating the three tiers.
// Bands are inclusive on their lower edge: Flagship covers
// [FlagshipMin, ∞), Mid covers [MidMin, FlagshipMin) and Emerging
// covers (-∞, MidMin).
type Bounds struct {
	FlagshipMin int
	MidMin      int
}

func DefaultBounds() Bounds {
	return Bounds{
		FlagshipMin: 66,
		MidMin:      36,
	}
}

func (b Bounds) Validate() error {
	if b.MidMin >= b.FlagshipMin {
		return fmt.Errorf("mid lower bound %d must be below flagship lower bound %d", b.MidMin, b.FlagshipMin)
	}
	return nil
}

// Classify maps a popularity value to exactly one tier. Total over
// all integers; the three bands partition the range with no gap or
// overlap.
func (b Bounds) Classify(popularity int) Tier {
	switch {
	case popularity >= b.FlagshipMin:
		return Flagship
	case popularity >= b.MidMin:
		return Mid
	default:
		return Emerging
	}
}

// Range describes the popularity interval of a tier in human terms,
// used in slot validation messages.
func (b Bounds) Range(t Tier) string {
	switch t {
	case Flagship:
		return fmt.Sprintf("popularity %d or above", b.FlagshipMin)
	case Mid:
		return fmt.Sprintf("popularity %d to %d", b.MidMin, b.FlagshipMin-1)
	default:
		return fmt.Sprintf("popularity below %d", b.MidMin)
	}
}

// SlotRequirements is the required tier per roster position.
// Position 1 hosts the flagship pick, positions 2-3 the mid picks
// and positions 4-5 the emerging picks.
func SlotRequirements() [5]Tier {
	return [5]Tier{Flagship, Mid, Mid, Emerging, Emerging}
}
