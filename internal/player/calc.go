package player

// Bed Wars level-from-XP formula: four "easy" levels cost progressively more
// XP, then every level above that costs a flat 5000 XP, with a full
// prestige (100 levels) recurring every 487000 XP.
const (
	levelsPerPrestige = 100
	xpPerLevel        = 5000
	xpPerPrestige     = 487000
)

var easyLevelXP = [4]int{500, 1000, 2000, 3500}

// LevelFromXP converts total Bed Wars experience into a star level.
func LevelFromXP(xp int) float64 {
	if xp < 0 {
		xp = 0
	}
	prestiges := xp / xpPerPrestige
	remaining := xp % xpPerPrestige
	level := prestiges * levelsPerPrestige

	for _, needed := range easyLevelXP {
		if remaining < needed {
			return float64(level) + float64(remaining)/float64(needed)
		}
		level++
		remaining -= needed
	}

	level += remaining / xpPerLevel
	fractional := float64(remaining%xpPerLevel) / float64(xpPerLevel)
	return float64(level) + fractional
}
