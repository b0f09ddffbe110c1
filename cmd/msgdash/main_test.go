package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgdash/internal/api"
	"msgdash/internal/api/apitest"
	"msgdash/internal/i18n"
)

func TestMain(m *testing.M) {
	// 固定时区，列表中的创建时间才可复现 / fixed zone keeps created dates reproducible
	time.Local = time.UTC
	i18n.Init("en")
	os.Exit(m.Run())
}

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func newCLIBackend(t *testing.T) *apitest.Backend {
	t.Helper()
	b := apitest.New()
	srv := apitest.Start(t, b)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("MSGDASH_CONFIG_PATH", "")
	t.Setenv("MSGDASH_API_URL", srv.URL)
	t.Setenv("MSGDASH_HOME", filepath.Join(home, "data"))
	t.Setenv("MSGDASH_TOKEN", "")
	t.Setenv("MSGDASH_TIMEOUT_MS", "")
	t.Setenv("MSGDASH_LOG_LEVEL", "")
	t.Setenv("MSGDASH_LANG", "en")
	return b
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func sampleItems() []api.Item {
	return []api.Item{
		{
			ID:          "item-1",
			Title:       "Quarterly planning",
			Description: "Agenda for Q3",
			Source:      "telegram",
			CreatedAt:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
			Classification: &api.Classification{
				Category:       "meeting",
				Priority:       "high",
				ActionRequired: true,
				Contact:        "Grace",
			},
		},
		{
			ID:        "item-2",
			Title:     "Buy milk",
			CreatedAt: time.Date(2024, 3, 2, 18, 30, 0, 0, time.UTC),
		},
	}
}

func TestStatusText(t *testing.T) {
	b := newCLIBackend(t)

	res := runCLI(t, "", "status")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	golden(t).Assert(t, "status_disconnected", []byte(res.stdout))

	b.Update(func(b *apitest.Backend) {
		b.Status = api.IntegrationStatus{Connected: true, Phone: "+15551234567", Username: "ada", Message: "Telegram connected"}
	})
	res = runCLI(t, "", "status")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	golden(t).Assert(t, "status_connected", []byte(res.stdout))
}

func TestStatusJSON(t *testing.T) {
	newCLIBackend(t)

	res := runCLI(t, "", "status", "--format", "json")
	require.Equal(t, exitSuccess, res.code, res.stderr)

	var out struct {
		Status string       `json:"status"`
		Data   statusResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, "ok", out.Status)
	assert.False(t, out.Data.Connected)
	require.NotNil(t, out.Data.User)
	assert.Equal(t, "ada@example.com", out.Data.User.Email)
}

func TestStatusYAML(t *testing.T) {
	newCLIBackend(t)

	res := runCLI(t, "", "status", "--format", "yaml")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "status: ok")
	assert.Contains(t, res.stdout, "connected: false")
	assert.Contains(t, res.stdout, "email: ada@example.com")
}

func TestInvalidFormatIsUsageError(t *testing.T) {
	newCLIBackend(t)

	res := runCLI(t, "", "status", "--format", "xml")
	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr, "invalid format")
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	newCLIBackend(t)

	res := runCLI(t, "", "items", "--colour", "red")
	assert.Equal(t, exitUsage, res.code)
}

func TestTelegramConnectRetriesWrongCode(t *testing.T) {
	b := newCLIBackend(t)

	// wrong code, empty password, then the right code
	res := runCLI(t, "99999\n\n12345\n\n", "telegram", "connect", "--phone", "+15551234567")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	golden(t).Assert(t, "telegram_connect", []byte(res.stdout))

	assert.Contains(t, res.stderr, "Invalid code")
	assert.Contains(t, res.stderr, "Verification code: ")
	assert.Equal(t, 1, b.Calls("start"), "a retry must not request a new code")
	assert.Equal(t, 2, b.Calls("verify"))
	assert.Equal(t, "", b.LastVerify().Password)
}

func TestTelegramConnectWithPassword(t *testing.T) {
	b := newCLIBackend(t)
	b.Update(func(b *apitest.Backend) { b.Password = "hunter2" })

	res := runCLI(t, "+15551234567\n12345\nhunter2\n", "telegram", "connect")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Phone number: ")
	assert.Equal(t, "hunter2", b.LastVerify().Password)
	assert.Equal(t, "+15551234567", b.LastVerify().Phone)
}

func TestTelegramConnectEmptyCodeAborts(t *testing.T) {
	b := newCLIBackend(t)

	res := runCLI(t, "\n", "telegram", "connect", "--phone", "+15551234567")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "Aborted")
	assert.Equal(t, 0, b.Calls("verify"))
}

func TestTelegramConnectStartFailure(t *testing.T) {
	b := newCLIBackend(t)
	b.Update(func(b *apitest.Backend) { b.FailStart = "Phone number banned" })

	res := runCLI(t, "", "telegram", "connect", "--phone", "+15551234567")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "Error: Phone number banned")
}

func TestTelegramConnectWhenAlreadyConnected(t *testing.T) {
	b := newCLIBackend(t)
	b.Update(func(b *apitest.Backend) {
		b.Status = api.IntegrationStatus{Connected: true, Username: "ada", Message: "Telegram connected"}
	})

	res := runCLI(t, "", "telegram", "connect")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "Telegram is already connected\nConnected as @ada\n", res.stdout)
	assert.Equal(t, 0, b.Calls("start"))
}

func TestTelegramDisconnect(t *testing.T) {
	b := newCLIBackend(t)
	b.Update(func(b *apitest.Backend) {
		b.Status = api.IntegrationStatus{Connected: true, Username: "ada", Message: "Telegram connected"}
	})

	res := runCLI(t, "", "telegram", "disconnect")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "Disconnected from Telegram\n", res.stdout)
	assert.Equal(t, 1, b.Calls("disconnect"))

	b.Update(func(b *apitest.Backend) { b.FailDisconnect = "Not connected" })
	res = runCLI(t, "", "telegram", "disconnect")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "Not connected")
}

func TestGmailConnectNoBrowser(t *testing.T) {
	newCLIBackend(t)

	res := runCLI(t, "", "gmail", "connect", "--no-browser")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	golden(t).Assert(t, "gmail_no_browser", []byte(res.stdout))
}

func TestGmailConnectFailure(t *testing.T) {
	b := newCLIBackend(t)
	b.Update(func(b *apitest.Backend) { b.FailAuthURL = "OAuth not configured" })

	res := runCLI(t, "", "gmail", "connect", "--no-browser")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "Error: OAuth not configured")
}

func TestItemsText(t *testing.T) {
	b := newCLIBackend(t)
	b.Update(func(b *apitest.Backend) { b.Items = sampleItems() })

	res := runCLI(t, "", "items")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	golden(t).Assert(t, "items_page1", []byte(res.stdout))
}

func TestItemsFiltersAndJSON(t *testing.T) {
	b := newCLIBackend(t)
	b.Update(func(b *apitest.Backend) { b.Items = sampleItems() })

	res := runCLI(t, "", "items", "--category", "Meeting", "--action-required", "true", "--format", "json")
	require.Equal(t, exitSuccess, res.code, res.stderr)

	var out struct {
		Data itemsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, 1, out.Data.Count)
	assert.Equal(t, 1, out.Data.Pages)
	require.Len(t, out.Data.Items, 1)
	assert.Equal(t, "item-1", out.Data.Items[0].ID)

	q := b.LastQuery()
	assert.Equal(t, "meeting", q.Get("category"))
	assert.Equal(t, "true", q.Get("action_required"))
	assert.Equal(t, "0", q.Get("skip"))
	assert.Equal(t, "5", q.Get("limit"))
}

func TestItemsEmpty(t *testing.T) {
	newCLIBackend(t)

	res := runCLI(t, "", "items", "--search", "nothing")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "No items found\n", res.stdout)
}

func TestItemsInvalidFilterIsUsageError(t *testing.T) {
	b := newCLIBackend(t)

	res := runCLI(t, "", "items", "--priority", "urgent")
	assert.Equal(t, exitUsage, res.code)
	assert.Equal(t, 0, b.Calls("items"))
}

func TestLoginAndConfigInit(t *testing.T) {
	newCLIBackend(t)
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	res := runCLI(t, "", "config", "init")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	path := filepath.Join(dir, ".msgdash", "config.json")
	assert.Equal(t, "Project config at "+path+"\n", res.stdout)

	res = runCLI(t, "secret-token\n", "login")
	require.Equal(t, exitSuccess, res.code, res.stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved struct {
		API struct {
			Token   string `json:"token"`
			BaseURL string `json:"base_url"`
		} `json:"api"`
	}
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "secret-token", saved.API.Token)
	assert.NotEmpty(t, saved.API.BaseURL, "scaffold values are kept")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitFailure, exitCode(assert.AnError))
	assert.Equal(t, exitUsage, exitCode(wrapExitError(exitUsage, "bad", assert.AnError)))
}
