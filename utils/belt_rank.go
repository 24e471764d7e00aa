package utils

// Belt thresholds are cumulative XP. The order matters: BeltForXP walks the
// slice from the top down and returns the first belt whose threshold is met.
var beltThresholds = []struct {
	Belt string
	XP   int
}{
	{"red", 50000},
	{"black", 25000},
	{"brown", 12000},
	{"blue", 6000},
	{"green", 3000},
	{"orange", 1200},
	{"yellow", 400},
	{"white", 0},
}

func BeltForXP(xp int) string {
	for _, t := range beltThresholds {
		if xp >= t.XP {
			return t.Belt
		}
	}
	return "white"
}

// NextBeltXP returns the XP needed for the next belt, or 0 when the user
// already holds the highest rank.
func NextBeltXP(xp int) int {
	next := 0
	for _, t := range beltThresholds {
		if xp < t.XP {
			next = t.XP
		}
	}
	return next
}
