package contracts

// Tier is the discrete signal-strength bucket
type Tier string

const (
	TierExtreme Tier = "EXTREME"
	TierHigh    Tier = "HIGH"
	TierMedium  Tier = "MEDIUM"
	TierLow     Tier = "LOW"
	TierWeak    Tier = "WEAK"
)

// AllTiers returns tiers from strongest to weakest
func AllTiers() []Tier {
	return []Tier{TierExtreme, TierHigh, TierMedium, TierLow, TierWeak}
}

// Rank orders tiers; higher is stronger. Unknown tiers rank 0.
func (t Tier) Rank() int {
	switch t {
	case TierExtreme:
		return 5
	case TierHigh:
		return 4
	case TierMedium:
		return 3
	case TierLow:
		return 2
	case TierWeak:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether t is one of the five tiers
func (t Tier) IsValid() bool {
	return t.Rank() > 0
}
