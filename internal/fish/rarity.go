package fish

import "fmt"

type Rarity int

const (
	Common Rarity = iota
	Uncommon
	Rare
	Epic
	Legendary
)

// Rarities lists every tier in draw order.
var Rarities = [...]Rarity{Common, Uncommon, Rare, Epic, Legendary}

const NumRarities = len(Rarities)

func (r Rarity) String() string {
	switch r {
	case Legendary:
		return "legendary"
	case Epic:
		return "epic"
	case Rare:
		return "rare"
	case Uncommon:
		return "uncommon"
	default:
		return "common"
	}
}

func ParseRarity(s string) (Rarity, error) {
	for _, r := range Rarities {
		if r.String() == s {
			return r, nil
		}
	}
	return Common, fmt.Errorf("unknown rarity %q", s)
}

func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rarity) UnmarshalText(b []byte) error {
	v, err := ParseRarity(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func ColorForTier(r Rarity) int {
	switch r {
	case Legendary:
		return 0xF1C40F // gold
	case Epic:
		return 0x9B59B6 // purple
	case Rare:
		return 0x3498DB // blue
	case Uncommon:
		return 0x2ECC71 // green
	default:
		return 0x95A5A6 // gray
	}
}
