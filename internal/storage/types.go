package storage

import "time"

// QueryEntry 缓存的查询结果（JSON 负载）
// QueryEntry is one cached query result with its JSON payload
type QueryEntry struct {
	Key       string
	Payload   []byte
	FetchedAt time.Time
	Stale     bool
}
