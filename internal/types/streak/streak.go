package streak

// StreakResult is the wire shape for both streak endpoints.
//
// IsNewDay carries two different meanings depending on which operation
// produced it: after RecordActivity it means "this call was the first one
// credited today", while from GetStreak it means "no activity has been
// recorded yet today". The field name is kept for compatibility with the
// mobile and web clients.
type StreakResult struct {
	CurrentStreak int  `json:"currentStreak"`
	LongestStreak int  `json:"longestStreak"`
	IsNewDay      bool `json:"isNewDay"`
}
