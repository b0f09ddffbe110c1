package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"msgdash/internal/api"
	"msgdash/internal/config"
	"msgdash/internal/handshake"
	"msgdash/internal/i18n"
	"msgdash/internal/oauth"
	"msgdash/internal/query"
	"msgdash/internal/storage"
)

// persistedMaxAge 启动时清理更早的持久化查询 / persisted queries older than this are purged at startup
const persistedMaxAge = 7 * 24 * time.Hour

// BuildResult 与 UI 无关的构建结果，供 TUI 与命令行共用
// BuildResult is UI-agnostic; both the TUI and the line-mode commands use it
type BuildResult struct {
	Client     *api.Client
	Cache      *query.Cache
	Store      storage.Store // nil when cache.persist is off
	Machine    *handshake.Machine
	Redirector *oauth.Redirector
	BaseURL    string
}

// Build 按依赖顺序初始化；调用方负责 defer result.Close()
// Build wires the components in dependency order; caller must defer result.Close()
func Build(cfg config.Config) (*BuildResult, error) {
	if locale := strings.TrimSpace(cfg.UI.Locale); locale != "" {
		i18n.Init(locale)
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API)
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second

	var cache *query.Cache
	if store != nil {
		cache = query.NewCache(ttl, store)
		if n, err := cache.PurgePersisted(persistedMaxAge); err != nil {
			log.Warn().Err(err).Msg("bootstrap: purge persisted queries failed")
		} else if n > 0 {
			log.Debug().Int("count", n).Msg("bootstrap: purged persisted queries")
		}
	} else {
		cache = query.NewCache(ttl, nil)
	}

	res := &BuildResult{
		Client:     client,
		Cache:      cache,
		Machine:    handshake.New(client, cache),
		Redirector: oauth.NewRedirector(client),
		BaseURL:    client.BaseURL(),
	}
	if store != nil {
		res.Store = store
	}
	log.Info().Str("api", res.BaseURL).Bool("persist", store != nil).Msg("bootstrap: ready")
	return res, nil
}

// Close releases the local store.
func (r *BuildResult) Close() error {
	if r == nil || r.Store == nil {
		return nil
	}
	return r.Store.Close()
}

func openStore(cfg config.Config) (*storage.SQLiteStore, error) {
	if !cfg.Cache.Persist {
		return nil, nil
	}
	store, err := storage.Open(cfg.Storage.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}
