package roster

// Pricing holds the coin prices for roster changes.
type Pricing struct {
	SlotChange    int64
	CaptainChange int64
}

func DefaultPricing() Pricing {
	return Pricing{
		SlotChange:    20,
		CaptainChange: 10,
	}
}

// ChangeCost prices a submission as a structural diff against the
// last committed roster. The first roster of a season is free.
//
// Each slot whose artist differs from the committed one costs
// SlotChange coins. Swapping one non-empty captain for a different
// non-empty captain costs CaptainChange once; setting a captain for
// the first time or removing one is free. Edits between commits never
// stack: only the net change against the committed version is paid.
func ChangeCost(proposed [SlotCount]SlotAssignment, captainID string, previous *Roster, pricing Pricing) int64 {
	if previous == nil {
		return 0
	}

	var cost int64
	for i, slot := range proposed {
		if slot.ArtistID != previous.Slots[i].ArtistID {
			cost += pricing.SlotChange
		}
	}

	if previous.CaptainID != "" && captainID != "" && captainID != previous.CaptainID {
		cost += pricing.CaptainChange
	}

	return cost
}
