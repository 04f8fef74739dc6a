package admin

import "time"

type searchResponse struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId,omitempty"`
	Type        string    `json:"type"`
	Action      string    `json:"action"`
	Category    string    `json:"category"`
	Language    string    `json:"language"`
	From404     bool      `json:"from404"`
	ResultCount int       `json:"resultCount"`
	SearchedAt  time.Time `json:"searchedAt"`
}

type searchListResponse struct {
	Items []searchResponse `json:"items"`
	Limit int              `json:"limit"`
}

type searchBucket struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type searchSummaryResponse struct {
	Total     int            `json:"total"`
	From404   int            `json:"from404"`
	NoResults int            `json:"noResults"`
	Buckets   []searchBucket `json:"buckets"`
}
