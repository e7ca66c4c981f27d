package models

import (
	"time"
)

// TokenInfo is the Redis-backed API token a league player gets via the bot,
// together with its usage counters.
type TokenInfo struct {
	Token           string    `json:"token"`
	RequestCount    int       `json:"request_count"`
	LastRequestTime time.Time `json:"last_request_dttm_utc"`
	CreatedTime     time.Time `json:"created_dttm_utc"`
}
