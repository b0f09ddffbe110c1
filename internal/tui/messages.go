package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"msgdash/internal/api"
	"msgdash/internal/handshake"
	"msgdash/internal/listing"
	"msgdash/internal/oauth"
	"msgdash/internal/query"
)

// CountKey 消息总数查询键，位于条目前缀下随条目一起失效
// CountKey caches the processed-message total; it lives under the items prefix
// so it is invalidated together with the listings.
var CountKey = query.KeyOf("items", "count")

// --- Tea Messages ---

// UserMsg 当前用户加载完成
// UserMsg carries the current user
type UserMsg struct {
	User api.User
	Err  error
}

// StatusMsg 集成状态加载完成
// StatusMsg carries the integration status
type StatusMsg struct {
	Status api.IntegrationStatus
	Err    error
}

// CountMsg 消息总数 / message total
type CountMsg struct {
	Count int
	Err   error
}

// ItemsMsg 条目页加载完成，Key 标识请求时的视图
// ItemsMsg carries one items page; Key identifies the view it was fetched for
type ItemsMsg struct {
	Key  string
	Page api.ItemsPage
	Err  error
}

type handshakeOp int

const (
	opStart handshakeOp = iota
	opVerify
	opDisconnect
)

// HandshakeMsg 握手操作结束 / a handshake operation finished
type HandshakeMsg struct {
	op  handshakeOp
	Err error
}

// GmailMsg 授权跳转结束 / the delegated-auth redirect finished
type GmailMsg struct {
	URL      string
	Reported string
	Err      error
}

// --- Commands ---

func fetchUserCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		u, err := b.CurrentUser(context.Background())
		if err != nil {
			log.Warn().Err(err).Msg("tui: load current user failed")
		}
		return UserMsg{User: u, Err: err}
	}
}

func fetchStatusCmd(b Backend, cache *query.Cache) tea.Cmd {
	return func() tea.Msg {
		s, err := query.Get(context.Background(), cache, query.StatusKey, b.TelegramStatus)
		if err != nil {
			log.Warn().Err(err).Msg("tui: load telegram status failed")
		}
		return StatusMsg{Status: s, Err: err}
	}
}

func fetchCountCmd(b Backend, cache *query.Cache) tea.Cmd {
	return func() tea.Msg {
		n, err := query.Get(context.Background(), cache, CountKey, func(ctx context.Context) (int, error) {
			page, err := b.ReadItems(ctx, api.ListItemsParams{Limit: 1})
			return page.Count, err
		})
		if err != nil {
			log.Warn().Err(err).Msg("tui: load message count failed")
		}
		return CountMsg{Count: n, Err: err}
	}
}

func fetchItemsCmd(b Backend, cache *query.Cache, view listing.View) tea.Cmd {
	key, params := view.Key(), view.Params()
	return func() tea.Msg {
		page, err := query.Get(context.Background(), cache, key, func(ctx context.Context) (api.ItemsPage, error) {
			return b.ReadItems(ctx, params)
		})
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("tui: load items failed")
		}
		return ItemsMsg{Key: key, Page: page, Err: err}
	}
}

func startCmd(m *handshake.Machine, phone string) tea.Cmd {
	return func() tea.Msg {
		return HandshakeMsg{op: opStart, Err: m.Start(context.Background(), phone)}
	}
}

func verifyCmd(m *handshake.Machine, code, password string) tea.Cmd {
	return func() tea.Msg {
		return HandshakeMsg{op: opVerify, Err: m.Verify(context.Background(), code, password)}
	}
}

func disconnectCmd(m *handshake.Machine) tea.Cmd {
	return func() tea.Msg {
		return HandshakeMsg{op: opDisconnect, Err: m.Disconnect(context.Background())}
	}
}

func gmailCmd(r *oauth.Redirector) tea.Cmd {
	return func() tea.Msg {
		var reported string
		url, err := r.Connect(context.Background(), func(msg string) { reported = msg })
		return GmailMsg{URL: url, Reported: reported, Err: err}
	}
}
