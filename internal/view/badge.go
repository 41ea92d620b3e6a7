package view

// Badge is a cosmetic reward unlocked when a category reaches Level.
type Badge struct {
	Name  string
	Icon  string
	Level int
}

// Badges lists every badge in unlock order.
var Badges = []Badge{
	{Name: "Sprout", Icon: "🌱", Level: 2},
	{Name: "Explorer", Icon: "🧭", Level: 3},
	{Name: "Achiever", Icon: "🏅", Level: 5},
	{Name: "Champion", Icon: "🏆", Level: 10},
	{Name: "Legend", Icon: "👑", Level: 20},
}

// UnlockedBadges returns the badges a category at level has earned.
func UnlockedBadges(level int) []Badge {
	var out []Badge
	for _, b := range Badges {
		if level >= b.Level {
			out = append(out, b)
		}
	}
	return out
}

// NewlyUnlocked returns the badge unlocked exactly at level, if any.
func NewlyUnlocked(level int) (Badge, bool) {
	for _, b := range Badges {
		if b.Level == level {
			return b, true
		}
	}
	return Badge{}, false
}
