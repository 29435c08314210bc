package model

import "time"

// KeyRecord is a single redemption code as persisted in the key store. The
// JSON field names are kept compatible with keys.json files written by the
// earlier generator scripts.
type KeyRecord struct {
	Code      string     `json:"key"`
	Hash      string     `json:"hash"` // truncated HMAC-SHA256 of Code
	CreatedAt time.Time  `json:"createdAt"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"usedAt"`
	UsedBy    *UsedBy    `json:"usedBy"`
}

// UsedBy describes the context that consumed a key. It is set once, together
// with UsedAt, and never changed afterwards.
type UsedBy struct {
	UserAgent     string    `json:"userAgent"`
	Timestamp     time.Time `json:"timestamp"`
	Host          string    `json:"host,omitempty"`
	User          string    `json:"user,omitempty"`
	ConsumptionID string    `json:"consumptionId,omitempty"`
}

// Stats is a read-only aggregation over a key collection.
type Stats struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Available int `json:"available"`
}

// Summarize counts total and consumed records.
func Summarize(records []KeyRecord) Stats {
	var s Stats
	s.Total = len(records)
	for _, r := range records {
		if r.Used {
			s.Used++
		}
	}
	s.Available = s.Total - s.Used
	return s
}
