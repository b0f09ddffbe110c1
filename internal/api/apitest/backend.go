// Package apitest provides an in-process fake of the messaging-integration
// backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"msgdash/internal/api"
)

// Backend is a scriptable fake. Exported fields may be changed between calls
// through Update; handlers read them under the lock.
type Backend struct {
	mu sync.Mutex

	Status     api.IntegrationStatus
	SessionKey string
	ValidCode  string
	Password   string
	AuthURL    string
	User       api.User
	Items      []api.Item
	Token      string

	// FailStart/FailDisconnect/FailAuthURL make the matching endpoint reply
	// 400 with the given detail.
	FailStart      string
	FailDisconnect string
	FailAuthURL    string

	calls      map[string]int
	lastVerify api.VerifyAuthRequest
	lastQuery  url.Values
}

// New returns a backend with a disconnected status and a fixed session key.
func New() *Backend {
	return &Backend{
		Status:     api.IntegrationStatus{Connected: false, Message: "Telegram not connected"},
		SessionKey: "abc123",
		ValidCode:  "12345",
		AuthURL:    "https://accounts.example.com/o/oauth2/auth?client_id=test",
		User:       api.User{ID: "u-1", Email: "ada@example.com", FullName: "Ada Lovelace"},
		calls:      map[string]int{},
	}
}

// Start serves b on an httptest server closed at test cleanup.
func Start(t testing.TB, b *Backend) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// Update runs fn with the backend locked.
func (b *Backend) Update(fn func(b *Backend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

// Calls returns how many times the named route was hit.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// LastVerify returns the body of the most recent verify request.
func (b *Backend) LastVerify() api.VerifyAuthRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastVerify
}

// LastQuery returns the query string of the most recent items request.
func (b *Backend) LastQuery() url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastQuery
}

// Handler builds the router.
func (b *Backend) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(b.authMiddleware)
	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/telegram/status", b.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/telegram/auth/start", b.handleStart).Methods(http.MethodPost)
	v1.HandleFunc("/telegram/auth/verify", b.handleVerify).Methods(http.MethodPost)
	v1.HandleFunc("/telegram/disconnect", b.handleDisconnect).Methods(http.MethodPost)
	v1.HandleFunc("/oauth/google/login", b.handleGoogleLogin).Methods(http.MethodGet)
	v1.HandleFunc("/items/", b.handleItems).Methods(http.MethodGet)
	v1.HandleFunc("/users/me", b.handleMe).Methods(http.MethodGet)
	return r
}

func (b *Backend) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		token := b.Token
		b.mu.Unlock()
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) hit(route string) {
	b.calls[route]++
}

func (b *Backend) handleStatus(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hit("status")
	writeJSON(w, http.StatusOK, b.Status)
}

func (b *Backend) handleStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.hit("start")
	if strings.TrimSpace(req.Phone) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "Field required"}},
		})
		return
	}
	if b.FailStart != "" {
		writeDetail(w, http.StatusBadRequest, b.FailStart)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"session_key": b.SessionKey,
		"message":     "Code sent",
	})
}

func (b *Backend) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyAuthRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.hit("verify")
	b.lastVerify = req
	switch {
	case req.SessionKey != b.SessionKey:
		writeDetail(w, http.StatusBadRequest, "Invalid session")
	case req.Code != b.ValidCode:
		writeDetail(w, http.StatusBadRequest, "Invalid code")
	case b.Password != "" && req.Password != b.Password:
		writeDetail(w, http.StatusUnauthorized, "Two-factor password required")
	default:
		b.Status = api.IntegrationStatus{
			Connected: true,
			Phone:     req.Phone,
			Username:  "ada",
			Message:   "Telegram connected",
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Telegram connected"})
	}
}

func (b *Backend) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hit("disconnect")
	if b.FailDisconnect != "" {
		writeDetail(w, http.StatusBadRequest, b.FailDisconnect)
		return
	}
	b.Status = api.IntegrationStatus{Connected: false, Message: "Telegram not connected"}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Telegram disconnected"})
}

func (b *Backend) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hit("google")
	if b.FailAuthURL != "" {
		writeDetail(w, http.StatusBadRequest, b.FailAuthURL)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"authorization_url": b.AuthURL})
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hit("me")
	writeJSON(w, http.StatusOK, b.User)
}

func (b *Backend) handleItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.hit("items")
	b.lastQuery = q

	matched := make([]api.Item, 0, len(b.Items))
	for _, item := range b.Items {
		if matchItem(item, q) {
			matched = append(matched, item)
		}
	}
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	page := []api.Item{}
	if skip < len(matched) {
		end := skip + limit
		if end > len(matched) {
			end = len(matched)
		}
		page = matched[skip:end]
	}
	writeJSON(w, http.StatusOK, api.ItemsPage{Data: page, Count: len(matched)})
}

func matchItem(item api.Item, q url.Values) bool {
	contains := func(haystack, needle string) bool {
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
	}
	if s := q.Get("search"); s != "" && !contains(item.Title, s) && !contains(item.Description, s) {
		return false
	}
	if s := q.Get("source"); s != "" && !contains(item.Source, s) {
		return false
	}
	if s := q.Get("contact"); s != "" && !contains(item.Contact(), s) {
		return false
	}
	c := item.Classification
	if s := q.Get("category"); s != "" && (c == nil || c.Category != s) {
		return false
	}
	if s := q.Get("priority"); s != "" && (c == nil || c.Priority != s) {
		return false
	}
	if s := q.Get("action_required"); s != "" {
		want, _ := strconv.ParseBool(s)
		if c == nil || c.ActionRequired != want {
			return false
		}
	}
	return true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
