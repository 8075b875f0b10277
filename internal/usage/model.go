package usage

import "time"

// Usage represents a user's plan consumption snapshot. Used counts AI
// draft generations in the current period.
type Usage struct {
	Plan     string    `json:"plan"`
	Limit    int       `json:"limit"`
	Used     int       `json:"used"`
	ResetsAt time.Time `json:"resetsAt"`
}
