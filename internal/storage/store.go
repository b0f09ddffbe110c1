package storage

import "time"

// Store 本地持久化接口：查询缓存与视图状态
// Store is the local persistence interface: query cache and view state
type Store interface {
	// 查询缓存 / Query cache
	PutQuery(entry QueryEntry) error
	LoadQuery(key string) (QueryEntry, bool, error)
	MarkStale(key string) error
	MarkStalePrefix(prefix string) error
	PurgeQueries(olderThan time.Time) (int, error)

	// 视图状态 / View state
	SaveViewState(name string, v any) error
	LoadViewState(name string, v any) (bool, error)

	// 生命周期 / Lifecycle
	Close() error
}
