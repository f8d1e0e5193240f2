package tier

import "testing"

func TestClassifyPartitionsPopularityRange(t *testing.T) {
	bounds := DefaultBounds()

	for popularity := -50; popularity <= 150; popularity++ {
		got := bounds.Classify(popularity)
		if _, ok := AllTiers[got]; !ok {
			t.Fatalf("popularity %d classified to unknown tier %q", popularity, got)
		}

		matches := 0
		if popularity >= bounds.FlagshipMin {
			matches++
			if got != Flagship {
				t.Fatalf("popularity %d: expected %s, got %s", popularity, Flagship, got)
			}
		}
		if popularity >= bounds.MidMin && popularity < bounds.FlagshipMin {
			matches++
			if got != Mid {
				t.Fatalf("popularity %d: expected %s, got %s", popularity, Mid, got)
			}
		}
		if popularity < bounds.MidMin {
			matches++
			if got != Emerging {
				t.Fatalf("popularity %d: expected %s, got %s", popularity, Emerging, got)
			}
		}
		if matches != 1 {
			t.Fatalf("popularity %d matched %d tier predicates, want exactly 1", popularity, matches)
		}
	}
}

func TestClassifyBoundaries(t *testing.T) {
	bounds := DefaultBounds()

	tests := []struct {
		popularity int
		want       Tier
	}{
		{popularity: 66, want: Flagship},
		{popularity: 65, want: Mid},
		{popularity: 36, want: Mid},
		{popularity: 35, want: Emerging},
		{popularity: 0, want: Emerging},
		{popularity: 100, want: Flagship},
	}

	for _, tt := range tests {
		if got := bounds.Classify(tt.popularity); got != tt.want {
			t.Fatalf("classify(%d) = %s, want %s", tt.popularity, got, tt.want)
		}
	}
}

func TestBoundsValidate(t *testing.T) {
	if err := DefaultBounds().Validate(); err != nil {
		t.Fatalf("default bounds must be valid: %v", err)
	}
	if err := (Bounds{FlagshipMin: 40, MidMin: 40}).Validate(); err == nil {
		t.Fatal("expected overlap error for equal bounds")
	}
}

func TestSlotRequirementsShape(t *testing.T) {
	reqs := SlotRequirements()
	if reqs[0] != Flagship {
		t.Fatalf("slot 1 must require %s, got %s", Flagship, reqs[0])
	}

	counts := map[Tier]int{}
	for _, r := range reqs {
		counts[r]++
	}
	if counts[Flagship] != 1 || counts[Mid] != 2 || counts[Emerging] != 2 {
		t.Fatalf("unexpected slot distribution: %v", counts)
	}
}
