package model

// Palette holds the fixed task colors every category rotates through.
var Palette = [...]string{
	"#FF6B6B",
	"#FFA94D",
	"#FFD43B",
	"#69DB7C",
	"#4DABF7",
	"#9775FA",
	"#F783AC",
}

// ShuffledPalette returns a permutation of Palette produced by shuffle, which
// has the signature of rand.Shuffle.
func ShuffledPalette(shuffle func(n int, swap func(i, j int))) []string {
	colors := append([]string{}, Palette[:]...)
	if shuffle != nil {
		shuffle(len(colors), func(i, j int) {
			colors[i], colors[j] = colors[j], colors[i]
		})
	}
	return colors
}

// IsPaletteColor reports whether color is one of the palette entries.
func IsPaletteColor(color string) bool {
	for _, c := range Palette {
		if c == color {
			return true
		}
	}
	return false
}

// isPalettePermutation reports whether colors holds every palette entry exactly once.
func isPalettePermutation(colors []string) bool {
	if len(colors) != len(Palette) {
		return false
	}
	seen := make(map[string]bool, len(colors))
	for _, c := range colors {
		if !IsPaletteColor(c) || seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}
