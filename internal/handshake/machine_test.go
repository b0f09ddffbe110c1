package handshake

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgdash/internal/api"
	"msgdash/internal/api/apitest"
	"msgdash/internal/config"
	"msgdash/internal/i18n"
	"msgdash/internal/query"
)

func TestMain(m *testing.M) {
	i18n.Init("en")
	os.Exit(m.Run())
}

type recordingCache struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingCache) Invalidate(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
}

func (r *recordingCache) invalidated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

// fakeBackend lets a test hold a call open until it releases it.
type fakeBackend struct {
	startResp  api.StartAuthResponse
	startErr   error
	verifyErr  error
	discErr    error
	startGate  chan struct{}
	verifyGate chan struct{}
	entered    chan string

	mu         sync.Mutex
	lastVerify api.VerifyAuthRequest
	starts     int
}

func (f *fakeBackend) StartTelegramAuth(ctx context.Context, phone string) (api.StartAuthResponse, error) {
	f.mu.Lock()
	f.starts++
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- "start"
	}
	if f.startGate != nil {
		<-f.startGate
	}
	return f.startResp, f.startErr
}

func (f *fakeBackend) VerifyTelegramAuth(ctx context.Context, req api.VerifyAuthRequest) error {
	f.mu.Lock()
	f.lastVerify = req
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- "verify"
	}
	if f.verifyGate != nil {
		<-f.verifyGate
	}
	return f.verifyErr
}

func (f *fakeBackend) DisconnectTelegram(ctx context.Context) error {
	return f.discErr
}

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

func newAPIMachine(t *testing.T) (*Machine, *apitest.Backend, *query.Cache) {
	t.Helper()
	b := apitest.New()
	srv := apitest.Start(t, b)
	client := api.NewClient(config.APIConfig{BaseURL: srv.URL, TimeoutMS: 2000})
	cache := query.NewCache(0, nil)
	return New(client, cache), b, cache
}

func assertOneMessage(t *testing.T, s Snapshot) {
	t.Helper()
	if s.Success != "" && s.Error != "" {
		t.Fatalf("both success %q and error %q are set", s.Success, s.Error)
	}
}

func TestHappyPathWithoutPassword(t *testing.T) {
	m, b, cache := newAPIMachine(t)
	ctx := context.Background()
	var calls int
	fetchStatus := func(ctx context.Context) (api.IntegrationStatus, error) {
		calls++
		return api.IntegrationStatus{}, nil
	}
	_, err := query.Get(ctx, cache, query.StatusKey, fetchStatus)
	require.NoError(t, err)

	require.NoError(t, m.Start(ctx, "+15551234567"))
	s := m.Snapshot()
	want := Snapshot{
		Phase:   CodeSent,
		Session: Session{SessionKey: "abc123", Phone: "+15551234567"},
		Success: "Authentication code sent to your phone",
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("after start (-want +got):\n%s", diff)
	}
	assert.True(t, cache.Fresh(query.StatusKey), "start must not invalidate status")

	require.NoError(t, m.Verify(ctx, "12345", ""))
	s = m.Snapshot()
	assert.Equal(t, Connected, s.Phase)
	assert.Equal(t, "Successfully connected to Telegram!", s.Success)
	assert.Empty(t, s.Error)
	assert.Empty(t, b.LastVerify().Password, "empty password must not be sent")
	assert.Equal(t, "+15551234567", b.LastVerify().Phone)

	assert.False(t, cache.Fresh(query.StatusKey))
	_, err = query.Get(ctx, cache, query.StatusKey, fetchStatus)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "status must be refetched after connect")
}

func TestVerifyWrongCodeKeepsSession(t *testing.T) {
	m, _, _ := newAPIMachine(t)
	ctx := context.Background()
	require.NoError(t, m.Start(ctx, "+15551234567"))

	err := m.Verify(ctx, "00000", "")
	require.Error(t, err)

	s := m.Snapshot()
	assert.Equal(t, CodeSent, s.Phase)
	assert.Equal(t, Session{SessionKey: "abc123", Phone: "+15551234567"}, s.Session)
	assert.Equal(t, "Invalid code", s.Error)
	assert.Empty(t, s.Success)

	// The code step can be retried without restarting the phone step.
	require.NoError(t, m.Verify(ctx, "12345", ""))
	assert.Equal(t, Connected, m.Phase())
}

func TestVerifyWithPassword(t *testing.T) {
	m, b, _ := newAPIMachine(t)
	b.Update(func(b *apitest.Backend) { b.Password = "hunter2" })
	ctx := context.Background()
	require.NoError(t, m.Start(ctx, "+15551234567"))

	err := m.Verify(ctx, "12345", "")
	require.Error(t, err)
	assert.Equal(t, "Two-factor password required", m.Snapshot().Error)

	require.NoError(t, m.Verify(ctx, "12345", "hunter2"))
	assert.Equal(t, "hunter2", b.LastVerify().Password)
	assert.Equal(t, Connected, m.Phase())
}

func TestStartFailure(t *testing.T) {
	m, b, _ := newAPIMachine(t)
	b.Update(func(b *apitest.Backend) { b.FailStart = "Phone number banned" })

	err := m.Start(context.Background(), "+15551234567")
	require.Error(t, err)
	s := m.Snapshot()
	assert.Equal(t, Idle, s.Phase)
	assert.Equal(t, Session{}, s.Session)
	assert.Equal(t, "Phone number banned", s.Error)
	assert.Empty(t, s.Success)
}

func TestFallbackMessages(t *testing.T) {
	ctx := context.Background()

	f := &fakeBackend{startErr: emptyErr{}}
	m := New(f, nil)
	require.Error(t, m.Start(ctx, "+1"))
	assert.Equal(t, "Failed to start authentication", m.Snapshot().Error)

	f.startErr = nil
	f.startResp = api.StartAuthResponse{SessionKey: "k"}
	require.NoError(t, m.Start(ctx, "+1"))
	f.verifyErr = emptyErr{}
	require.Error(t, m.Verify(ctx, "1", ""))
	assert.Equal(t, "Failed to verify code", m.Snapshot().Error)

	f.discErr = emptyErr{}
	require.Error(t, m.Disconnect(ctx))
	s := m.Snapshot()
	assert.Equal(t, "Failed to disconnect", s.Error)
	assert.Equal(t, CodeSent, s.Phase, "failed disconnect leaves the phase alone")
}

func TestValidationChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := &fakeBackend{startResp: api.StartAuthResponse{SessionKey: "k"}}
	m := New(f, nil)

	require.ErrorIs(t, m.Start(ctx, "   "), ErrPhoneRequired)
	require.ErrorIs(t, m.Verify(ctx, "12345", ""), ErrWrongPhase)
	assert.Equal(t, Snapshot{}, m.Snapshot())
	assert.Equal(t, 0, f.starts)

	require.NoError(t, m.Start(ctx, "+1"))
	before := m.Snapshot()
	require.ErrorIs(t, m.Verify(ctx, " ", ""), ErrCodeRequired)
	require.ErrorIs(t, m.Start(ctx, "+1"), ErrWrongPhase)
	assert.Equal(t, before, m.Snapshot())

	// A backend that returns no session key leaves nothing to verify against.
	f2 := &fakeBackend{}
	m2 := New(f2, nil)
	require.NoError(t, m2.Start(ctx, "+1"))
	require.ErrorIs(t, m2.Verify(ctx, "12345", ""), ErrNoSession)
}

func TestDisconnect(t *testing.T) {
	m, b, cache := newAPIMachine(t)
	ctx := context.Background()
	require.NoError(t, m.Start(ctx, "+15551234567"))
	require.NoError(t, m.Verify(ctx, "12345", ""))
	_, _ = query.Get(ctx, cache, query.StatusKey, func(context.Context) (api.IntegrationStatus, error) {
		return api.IntegrationStatus{Connected: true}, nil
	})

	require.NoError(t, m.Disconnect(ctx))
	s := m.Snapshot()
	assert.Equal(t, Idle, s.Phase)
	assert.Equal(t, Session{}, s.Session)
	assert.Equal(t, "Disconnected from Telegram", s.Success)
	assert.False(t, cache.Fresh(query.StatusKey))
	assert.Equal(t, 1, b.Calls("disconnect"))

	b.Update(func(b *apitest.Backend) { b.FailDisconnect = "Session busy" })
	require.Error(t, m.Disconnect(ctx))
	s = m.Snapshot()
	assert.Equal(t, "Session busy", s.Error)
	assert.Empty(t, s.Success)
}

func TestDisconnectFromIdleIsAllowed(t *testing.T) {
	rec := &recordingCache{}
	m := New(&fakeBackend{}, rec)
	require.NoError(t, m.Disconnect(context.Background()))
	assert.Equal(t, []string{query.StatusKey}, rec.invalidated())
}

func TestAtMostOneMessage(t *testing.T) {
	ctx := context.Background()
	f := &fakeBackend{startResp: api.StartAuthResponse{SessionKey: "k"}}
	m := New(f, &recordingCache{})

	steps := []func(){
		func() { _ = m.Start(ctx, "+1") },
		func() { f.verifyErr = errors.New("Invalid code"); _ = m.Verify(ctx, "1", "") },
		func() { f.verifyErr = nil; _ = m.Verify(ctx, "1", "") },
		func() { f.discErr = errors.New("nope"); _ = m.Disconnect(ctx) },
		func() { f.discErr = nil; _ = m.Disconnect(ctx) },
		func() { f.startErr = errors.New("flood wait"); _ = m.Start(ctx, "+1") },
	}
	for _, step := range steps {
		step()
		assertOneMessage(t, m.Snapshot())
	}
}

func TestPendingGate(t *testing.T) {
	f := &fakeBackend{
		startResp: api.StartAuthResponse{SessionKey: "k"},
		startGate: make(chan struct{}),
		entered:   make(chan string, 1),
	}
	m := New(f, nil)
	done := make(chan error, 1)
	go func() { done <- m.Start(context.Background(), "+1") }()
	<-f.entered

	assert.True(t, m.Snapshot().Pending.Start)
	require.ErrorIs(t, m.Start(context.Background(), "+1"), ErrPending)

	close(f.startGate)
	require.NoError(t, <-done)
	s := m.Snapshot()
	assert.False(t, s.Pending.Any())
	assert.Equal(t, CodeSent, s.Phase)
	assert.Equal(t, 1, f.starts)
}

func TestStaleResponseDropped(t *testing.T) {
	f := &fakeBackend{
		startResp: api.StartAuthResponse{SessionKey: "late"},
		startGate: make(chan struct{}),
		entered:   make(chan string, 1),
	}
	rec := &recordingCache{}
	m := New(f, rec)

	done := make(chan error, 1)
	go func() { done <- m.Start(context.Background(), "+1") }()
	<-f.entered

	// A newer disconnect lands first.
	require.NoError(t, m.Disconnect(context.Background()))
	close(f.startGate)
	require.ErrorIs(t, <-done, ErrStale)

	s := m.Snapshot()
	assert.Equal(t, Idle, s.Phase)
	assert.Equal(t, Session{}, s.Session)
	assert.Equal(t, "Disconnected from Telegram", s.Success)
	assert.False(t, s.Pending.Any())
}

func TestIsConnected(t *testing.T) {
	tests := []struct {
		name   string
		status *api.IntegrationStatus
		phase  Phase
		want   bool
	}{
		{"nil status idle", nil, Idle, false},
		{"nil status connected phase", nil, Connected, true},
		{"status connected", &api.IntegrationStatus{Connected: true}, Idle, true},
		{"status not connected code sent", &api.IntegrationStatus{}, CodeSent, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConnected(tt.status, tt.phase))
		})
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "code_sent", CodeSent.String())
	assert.Equal(t, "connected", Connected.String())
}
