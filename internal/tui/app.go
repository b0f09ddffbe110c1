package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"

	"msgdash/internal/api"
	"msgdash/internal/handshake"
	"msgdash/internal/i18n"
	"msgdash/internal/listing"
	"msgdash/internal/oauth"
	"msgdash/internal/query"
	"msgdash/internal/storage"
)

// itemsViewState 视图状态在本地存储中的名称 / name of the persisted items view
const itemsViewState = "items"

// Screen 页面标识
// Screen identifies a screen
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenItems
)

// Backend 仪表盘读取的后端接口
// Backend is the read side of the API the dashboard needs
type Backend interface {
	TelegramStatus(ctx context.Context) (api.IntegrationStatus, error)
	ReadItems(ctx context.Context, params api.ListItemsParams) (api.ItemsPage, error)
	CurrentUser(ctx context.Context) (api.User, error)
}

// Deps TUI 依赖 / TUI dependencies
type Deps struct {
	Backend    Backend
	Cache      *query.Cache
	Machine    *handshake.Machine
	Redirector *oauth.Redirector
	Store      storage.Store // optional
	BaseURL    string
	Theme      string
}

// App Bubble Tea 主 Model
// App is the main Bubble Tea model
type App struct {
	// 布局 / Layout
	width  int
	height int
	screen Screen

	deps    Deps
	spinner spinner.Model

	// 仪表盘 / Dashboard
	user          *api.User
	status        *api.IntegrationStatus
	statusLoading bool
	count         *int
	countLoading  bool
	phoneInput    textinput.Model
	codeInput     textinput.Model
	passwordInput textinput.Model
	dashFocus     int
	busy          bool
	gmailBusy     bool
	gmailNotice   string
	gmailErr      string

	// 条目 / Items
	view         listing.View
	page         *api.ItemsPage
	itemsLoading bool
	itemsErr     string
	filters      []textinput.Model
	categoryIdx  int
	priorityIdx  int
	itemsFocus   int
	table        table.Model
	pager        paginator.Model
	detail       *api.Item
	detailView   viewport.Model

	// 配置 / Config
	theme  Theme
	keys   KeyMap
	locale *i18n.I18n
}

// NewApp 创建 TUI 应用
// NewApp creates a new TUI application
func NewApp(deps Deps) App {
	theme := ThemeByName(deps.Theme)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(theme.Secondary)

	phone := textinput.New()
	phone.Placeholder = i18n.T("telegram.phone_placeholder")
	phone.CharLimit = 32
	phone.Focus()

	code := textinput.New()
	code.Placeholder = i18n.T("telegram.code_placeholder")
	code.CharLimit = 16

	password := textinput.New()
	password.Placeholder = i18n.T("telegram.password_placeholder")
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 256

	filters := make([]textinput.Model, len(listing.FilterFields))
	for i, field := range listing.FilterFields {
		ti := textinput.New()
		ti.Placeholder = filterPlaceholder(field)
		ti.CharLimit = 128
		ti.Prompt = ""
		filters[i] = ti
	}

	tbl := table.New(table.WithFocused(false), table.WithHeight(listing.PageSize+1))
	pager := paginator.New()
	pager.Type = paginator.Dots
	pager.PerPage = listing.PageSize
	pager.ActiveDot = lipgloss.NewStyle().Foreground(theme.Primary).Render("●")
	pager.InactiveDot = theme.MutedStyle.Render("○")

	a := App{
		screen:        ScreenDashboard,
		deps:          deps,
		spinner:       sp,
		phoneInput:    phone,
		codeInput:     code,
		passwordInput: password,
		view:          listing.NewView(),
		filters:       filters,
		table:         tbl,
		pager:         pager,
		detailView:    viewport.New(80, 10),
		theme:         theme,
		keys:          DefaultKeyMap(),
		locale:        i18n.Global(),
		statusLoading: true,
		countLoading:  true,
		itemsLoading:  true,
	}
	a.restoreView()
	a.loadPlaceholders()
	a.resizeTable(100)
	a.syncTable()
	return a
}

func (a App) Init() tea.Cmd {
	b, c := a.deps.Backend, a.deps.Cache
	return tea.Batch(
		textinput.Blink,
		a.spinner.Tick,
		fetchUserCmd(b),
		fetchStatusCmd(b, c),
		fetchCountCmd(b, c),
		fetchItemsCmd(b, c, a.view),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.SwitchScreen):
			if a.screen == ScreenDashboard {
				a.screen = ScreenItems
			} else {
				a.screen = ScreenDashboard
			}
			a.applyFocus()
			return a, nil
		case key.Matches(msg, a.keys.Refresh):
			cmd := a.refresh()
			return a, cmd
		case key.Matches(msg, a.keys.ConnectGmail):
			cmd := a.connectGmail()
			return a, cmd
		}
		if a.screen == ScreenItems {
			return a.updateItemsKey(msg)
		}
		return a.updateDashboardKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case UserMsg:
		if msg.Err == nil {
			u := msg.User
			a.user = &u
		}
		return a, nil

	case StatusMsg:
		a.statusLoading = false
		if msg.Err == nil {
			s := msg.Status
			a.status = &s
		}
		a.applyFocus()
		return a, nil

	case CountMsg:
		a.countLoading = false
		n := msg.Count
		if msg.Err != nil {
			n = 0
		}
		a.count = &n
		return a, nil

	case ItemsMsg:
		return a.applyItems(msg), nil

	case HandshakeMsg:
		return a.applyHandshake(msg)

	case GmailMsg:
		a.gmailBusy = false
		a.gmailErr = msg.Reported
		a.gmailNotice = ""
		if msg.Err == nil {
			a.gmailNotice = i18n.T("gmail.opened")
		}
		return a, nil
	}

	return a.updateFocusedInput(msg)
}

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	tabs := a.renderTabs()
	statusBar := a.renderStatusBar(a.width)
	bodyHeight := a.height - lipgloss.Height(tabs) - lipgloss.Height(statusBar)
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	var body string
	if a.screen == ScreenItems {
		body = a.renderItems(a.width)
	} else {
		body = a.renderDashboard(a.width)
	}
	body = lipgloss.NewStyle().Width(a.width).MaxHeight(bodyHeight).Height(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, tabs, body, statusBar)
}

// --- 内部方法 / Internal methods ---

func (a *App) relayout() {
	inputWidth := a.width/2 - 4
	if inputWidth < 20 {
		inputWidth = 20
	}
	a.phoneInput.Width = inputWidth
	a.codeInput.Width = inputWidth
	a.passwordInput.Width = inputWidth
	for i := range a.filters {
		a.filters[i].Width = 18
	}
	a.resizeTable(a.width)
	a.syncTable()

	a.detailView.Width = a.width - 2
	a.detailView.Height = a.height - 6
	if a.detailView.Height < 3 {
		a.detailView.Height = 3
	}
	if a.detail != nil {
		a.detailView.SetContent(RenderMarkdown(ItemMarkdown(*a.detail), a.detailView.Width))
	}
}

// refresh 作废状态与条目查询并重新加载
func (a *App) refresh() tea.Cmd {
	b, c := a.deps.Backend, a.deps.Cache
	c.Invalidate(query.StatusKey)
	c.InvalidatePrefix(query.ItemsPrefix)
	a.statusLoading = true
	a.countLoading = true
	a.itemsLoading = true
	return tea.Batch(fetchStatusCmd(b, c), fetchCountCmd(b, c), fetchItemsCmd(b, c, a.view))
}

func (a *App) connectGmail() tea.Cmd {
	if a.gmailBusy || a.deps.Redirector == nil {
		return nil
	}
	a.gmailBusy = true
	a.gmailErr = ""
	a.gmailNotice = ""
	return gmailCmd(a.deps.Redirector)
}

// loadPlaceholders 用缓存中的旧数据填充界面 / seed the screens with cached data
func (a *App) loadPlaceholders() {
	c := a.deps.Cache
	if c == nil {
		return
	}
	if s, ok := query.Peek[api.IntegrationStatus](c, query.StatusKey); ok {
		a.status = &s
	}
	if n, ok := query.Peek[int](c, CountKey); ok {
		a.count = &n
	}
	if p, ok := query.Peek[api.ItemsPage](c, a.view.Key()); ok {
		a.page = &p
	}
}

func (a *App) restoreView() {
	if a.deps.Store == nil {
		return
	}
	var saved listing.View
	ok, err := a.deps.Store.LoadViewState(itemsViewState, &saved)
	if err != nil {
		log.Warn().Err(err).Msg("tui: restore items view failed")
		return
	}
	if !ok {
		return
	}
	v := listing.NewView()
	for _, field := range append(append([]listing.Field(nil), listing.FilterFields...), listing.FieldActionRequired) {
		next, err := v.WithFilter(field, saved.Filters.Value(field))
		if err != nil {
			log.Warn().Err(err).Str("field", string(field)).Msg("tui: drop invalid saved filter")
			continue
		}
		v = next
	}
	a.view = v.WithPage(saved.Page)
	for i, field := range listing.FilterFields {
		a.filters[i].SetValue(a.view.Filters.Value(field))
	}
	a.categoryIdx = indexOf(categoryOptions(), string(a.view.Filters.Category))
	a.priorityIdx = indexOf(priorityOptions(), string(a.view.Filters.Priority))
}

func (a *App) persistView() {
	if a.deps.Store == nil {
		return
	}
	if err := a.deps.Store.SaveViewState(itemsViewState, a.view); err != nil {
		log.Warn().Err(err).Msg("tui: save items view failed")
	}
}

// --- 渲染方法 / Render methods ---

func (a App) renderTabs() string {
	tabs := []struct {
		id   Screen
		name string
	}{
		{ScreenDashboard, a.locale.T("screen.dashboard")},
		{ScreenItems, a.locale.T("screen.items")},
	}

	var parts []string
	for _, tab := range tabs {
		style := a.theme.InactiveTabStyle
		if tab.id == a.screen {
			style = a.theme.ActiveTabStyle
		}
		parts = append(parts, style.Render(tab.name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a App) renderStatusBar(width int) string {
	status := a.locale.T("status.ready")
	if a.statusLoading || a.itemsLoading || a.busy || a.gmailBusy {
		status = a.locale.T("status.loading")
	}

	hints := []string{a.locale.T("keys.tab"), a.locale.T("keys.focus"), a.locale.T("keys.reload"), a.locale.T("keys.gmail")}
	if a.screen == ScreenItems {
		hints = []string{a.locale.T("keys.tab"), a.locale.T("keys.focus"), a.locale.T("keys.filter"), a.locale.T("keys.page"), a.locale.T("keys.open")}
		if a.detail != nil {
			hints = []string{a.locale.T("keys.back")}
		}
	}
	hints = append(hints, a.locale.T("keys.quit"))

	left := fmt.Sprintf(" %s · %s", status, strings.Join(hints, " · "))
	right := fmt.Sprintf("%s  ", a.deps.BaseURL)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return a.theme.StatusBarStyle.Width(width).Render(bar)
}

func (a App) renderButton(label string, busy bool) string {
	if busy {
		return a.theme.ButtonBusyStyle.Render(a.spinner.View() + " " + label)
	}
	return a.theme.ButtonStyle.Render(label)
}

// Run 启动 Bubble Tea TUI
// Run starts the Bubble Tea TUI application
func Run(deps Deps) error {
	// 浏览器启动器的输出会破坏全屏界面 / browser launcher output would corrupt the alt screen
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	app := NewApp(deps)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func indexOf(options []string, v string) int {
	for i, o := range options {
		if o == v {
			return i
		}
	}
	return 0
}
