// Package handshake drives the phone + code (+ optional 2FA password)
// authorization flow for the Telegram integration.
//
// A Machine owns the in-progress session for one user. It is safe for
// concurrent use, but callers are expected to keep a single Machine per user
// session: two machines for the same account would race on the backend.
package handshake

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"msgdash/internal/api"
	"msgdash/internal/i18n"
	"msgdash/internal/query"
)

var (
	ErrPhoneRequired = errors.New("phone number is required")
	ErrCodeRequired  = errors.New("verification code is required")
	ErrNoSession     = errors.New("no authentication session in progress")
	ErrWrongPhase    = errors.New("operation not allowed in current phase")
	ErrPending       = errors.New("operation already in progress")
	// ErrStale 响应晚于更新的操作到达，已丢弃
	// ErrStale means the response arrived after a newer one and was dropped.
	ErrStale = errors.New("stale response dropped")
)

// Phase 握手阶段 / handshake phase
type Phase int

const (
	Idle Phase = iota
	CodeSent
	Connected
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case CodeSent:
		return "code_sent"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Session 进行中的认证会话 / in-progress authentication session
type Session struct {
	SessionKey string
	Phone      string
}

// Pending 正在执行的操作 / operations currently in flight
type Pending struct {
	Start      bool
	Verify     bool
	Disconnect bool
}

// Any reports whether any operation is in flight.
func (p Pending) Any() bool {
	return p.Start || p.Verify || p.Disconnect
}

// Snapshot 状态机的只读副本 / read-only copy of the machine state
type Snapshot struct {
	Phase   Phase
	Session Session
	Success string
	Error   string
	Pending Pending
}

// Backend is the subset of the API client the handshake needs.
type Backend interface {
	StartTelegramAuth(ctx context.Context, phone string) (api.StartAuthResponse, error)
	VerifyTelegramAuth(ctx context.Context, req api.VerifyAuthRequest) error
	DisconnectTelegram(ctx context.Context) error
}

// Invalidator marks cached queries stale.
type Invalidator interface {
	Invalidate(key string)
}

type Machine struct {
	backend Backend
	cache   Invalidator

	mu      sync.Mutex
	phase   Phase
	session Session
	success string
	errMsg  string
	pending Pending

	seq     uint64
	applied uint64
}

// New 创建状态机，cache 可为 nil
// New creates a machine in the Idle phase. cache may be nil.
func New(backend Backend, cache Invalidator) *Machine {
	return &Machine{backend: backend, cache: cache}
}

// IsConnected 由状态查询与本地阶段推导出的连接状态
// IsConnected derives the displayed connection state: the status query says
// connected, or the machine just reached Connected.
func IsConnected(status *api.IntegrationStatus, phase Phase) bool {
	if status != nil && status.Connected {
		return true
	}
	return phase == Connected
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Phase:   m.phase,
		Session: m.session,
		Success: m.success,
		Error:   m.errMsg,
		Pending: m.pending,
	}
}

func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Start 请求发送验证码 / requests a verification code for phone.
func (m *Machine) Start(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)

	m.mu.Lock()
	if m.pending.Start {
		m.mu.Unlock()
		return ErrPending
	}
	if m.phase != Idle {
		m.mu.Unlock()
		return ErrWrongPhase
	}
	if phone == "" {
		m.mu.Unlock()
		return ErrPhoneRequired
	}
	m.pending.Start = true
	seq := m.nextLocked()
	m.mu.Unlock()

	resp, err := m.backend.StartTelegramAuth(ctx, phone)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending.Start = false
	if !m.acceptLocked(seq) {
		log.Debug().Uint64("seq", seq).Msg("handshake: drop stale start response")
		return ErrStale
	}
	if err != nil {
		m.failLocked(err, "telegram.start_failed")
		log.Warn().Err(err).Msg("handshake: start failed")
		return err
	}
	m.phase = CodeSent
	m.session = Session{SessionKey: resp.SessionKey, Phone: phone}
	m.succeedLocked("telegram.code_sent")
	log.Info().Str("phase", m.phase.String()).Msg("handshake: code sent")
	return nil
}

// Verify 提交验证码与可选的两步验证密码
// Verify submits the code and, when non-empty, the 2FA password.
func (m *Machine) Verify(ctx context.Context, code, password string) error {
	code = strings.TrimSpace(code)

	m.mu.Lock()
	if m.pending.Verify {
		m.mu.Unlock()
		return ErrPending
	}
	if m.phase != CodeSent {
		m.mu.Unlock()
		return ErrWrongPhase
	}
	if m.session.SessionKey == "" {
		m.mu.Unlock()
		return ErrNoSession
	}
	if code == "" {
		m.mu.Unlock()
		return ErrCodeRequired
	}
	req := api.VerifyAuthRequest{
		SessionKey: m.session.SessionKey,
		Phone:      m.session.Phone,
		Code:       code,
		Password:   password,
	}
	m.pending.Verify = true
	seq := m.nextLocked()
	m.mu.Unlock()

	err := m.backend.VerifyTelegramAuth(ctx, req)

	m.mu.Lock()
	m.pending.Verify = false
	if !m.acceptLocked(seq) {
		m.mu.Unlock()
		log.Debug().Uint64("seq", seq).Msg("handshake: drop stale verify response")
		return ErrStale
	}
	if err != nil {
		m.failLocked(err, "telegram.verify_failed")
		m.mu.Unlock()
		log.Warn().Err(err).Msg("handshake: verify failed")
		return err
	}
	m.phase = Connected
	m.succeedLocked("telegram.connected")
	m.mu.Unlock()

	m.invalidate()
	log.Info().Msg("handshake: connected")
	return nil
}

// Disconnect 断开集成，任何阶段都可调用
// Disconnect tears the integration down. It is allowed from any phase.
func (m *Machine) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	if m.pending.Disconnect {
		m.mu.Unlock()
		return ErrPending
	}
	m.pending.Disconnect = true
	seq := m.nextLocked()
	m.mu.Unlock()

	err := m.backend.DisconnectTelegram(ctx)

	m.mu.Lock()
	m.pending.Disconnect = false
	if !m.acceptLocked(seq) {
		m.mu.Unlock()
		log.Debug().Uint64("seq", seq).Msg("handshake: drop stale disconnect response")
		return ErrStale
	}
	if err != nil {
		m.failLocked(err, "telegram.disconnect_failed")
		m.mu.Unlock()
		log.Warn().Err(err).Msg("handshake: disconnect failed")
		return err
	}
	m.phase = Idle
	m.session = Session{}
	m.succeedLocked("telegram.disconnected")
	m.mu.Unlock()

	m.invalidate()
	log.Info().Msg("handshake: disconnected")
	return nil
}

func (m *Machine) nextLocked() uint64 {
	m.seq++
	return m.seq
}

// acceptLocked 只接受比上一次已应用响应更新的响应
func (m *Machine) acceptLocked(seq uint64) bool {
	if seq <= m.applied {
		return false
	}
	m.applied = seq
	return true
}

func (m *Machine) succeedLocked(key string) {
	m.success = i18n.T(key)
	m.errMsg = ""
}

func (m *Machine) failLocked(err error, fallbackKey string) {
	m.errMsg = errorMessage(err, fallbackKey)
	m.success = ""
}

func (m *Machine) invalidate() {
	if m.cache != nil {
		m.cache.Invalidate(query.StatusKey)
	}
}

// errorMessage prefers the backend's message and falls back to a catalog text.
func errorMessage(err error, fallbackKey string) string {
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			return msg
		}
	}
	return i18n.T(fallbackKey)
}
