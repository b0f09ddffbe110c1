package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"msgdash/internal/handshake"
	"msgdash/internal/listing"
)

// telegramMode 卡片显示的分支 / which branch the Telegram card shows
type telegramMode int

const (
	modeConnect telegramMode = iota
	modeCode
	modeConnected
)

func (a App) telegramMode() telegramMode {
	if a.deps.Machine == nil {
		return modeConnect
	}
	phase := a.deps.Machine.Phase()
	if handshake.IsConnected(a.status, phase) {
		return modeConnected
	}
	if phase == handshake.CodeSent {
		return modeCode
	}
	return modeConnect
}

// applyFocus 根据当前页面与阶段设置输入焦点
func (a *App) applyFocus() {
	a.phoneInput.Blur()
	a.codeInput.Blur()
	a.passwordInput.Blur()
	for i := range a.filters {
		a.filters[i].Blur()
	}
	a.table.Blur()

	if a.screen == ScreenItems {
		if a.detail != nil {
			return
		}
		if a.itemsFocus == tableFocus {
			a.table.Focus()
		} else if !isSelector(listing.FilterFields[a.itemsFocus]) {
			a.filters[a.itemsFocus].Focus()
		}
		return
	}

	switch a.telegramMode() {
	case modeConnect:
		a.phoneInput.Focus()
	case modeCode:
		if a.dashFocus == 0 {
			a.codeInput.Focus()
		} else {
			a.passwordInput.Focus()
		}
	}
}

func (a App) updateDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.telegramMode() {
	case modeConnected:
		if key.Matches(msg, a.keys.Disconnect) {
			cmd := a.submitDisconnect()
			return a, cmd
		}
		return a, nil
	case modeCode:
		switch {
		case key.Matches(msg, a.keys.NextField), key.Matches(msg, a.keys.PrevField):
			a.dashFocus = 1 - a.dashFocus
			a.applyFocus()
			return a, nil
		case key.Matches(msg, a.keys.Submit):
			cmd := a.submitVerify()
			return a, cmd
		}
	case modeConnect:
		if key.Matches(msg, a.keys.Submit) {
			cmd := a.submitStart()
			return a, cmd
		}
	}
	return a.updateFocusedInput(msg)
}

// updateFocusedInput 将消息转发给获得焦点的输入框
// updateFocusedInput forwards msg to whichever input has focus
func (a App) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.screen == ScreenItems {
		if a.itemsFocus < tableFocus && !isSelector(listing.FilterFields[a.itemsFocus]) {
			a.filters[a.itemsFocus], cmd = a.filters[a.itemsFocus].Update(msg)
		}
		return a, cmd
	}
	switch a.telegramMode() {
	case modeConnect:
		a.phoneInput, cmd = a.phoneInput.Update(msg)
	case modeCode:
		if a.dashFocus == 0 {
			a.codeInput, cmd = a.codeInput.Update(msg)
		} else {
			a.passwordInput, cmd = a.passwordInput.Update(msg)
		}
	}
	return a, cmd
}

func (a *App) submitStart() tea.Cmd {
	phone := strings.TrimSpace(a.phoneInput.Value())
	if a.busy || phone == "" || a.deps.Machine == nil {
		return nil
	}
	a.busy = true
	return startCmd(a.deps.Machine, phone)
}

func (a *App) submitVerify() tea.Cmd {
	code := strings.TrimSpace(a.codeInput.Value())
	if a.busy || code == "" || a.deps.Machine == nil {
		return nil
	}
	a.busy = true
	return verifyCmd(a.deps.Machine, code, a.passwordInput.Value())
}

func (a *App) submitDisconnect() tea.Cmd {
	if a.busy || a.deps.Machine == nil {
		return nil
	}
	a.busy = true
	return disconnectCmd(a.deps.Machine)
}

// applyHandshake 处理握手结果；成功的变更会在后台重新拉取状态
// applyHandshake settles a finished operation. Successful mutations refetch the
// status in the background while the old value stays on screen.
func (a App) applyHandshake(msg HandshakeMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	if msg.Err != nil {
		a.applyFocus()
		return a, nil
	}

	switch msg.op {
	case opStart:
		a.codeInput.Reset()
		a.passwordInput.Reset()
		a.dashFocus = 0
	case opVerify:
		a.codeInput.Reset()
		a.passwordInput.Reset()
	case opDisconnect:
		a.phoneInput.Reset()
		a.dashFocus = 0
	}
	a.applyFocus()

	if msg.op == opStart {
		return a, nil
	}
	a.statusLoading = true
	return a, fetchStatusCmd(a.deps.Backend, a.deps.Cache)
}

// --- 渲染 / Rendering ---

func (a App) renderDashboard(width int) string {
	header := a.renderWelcome(width)

	cardWidth := width - 2
	sideBySide := width >= 100
	if sideBySide {
		cardWidth = width/2 - 2
	}
	telegram := a.theme.CardStyle.Width(cardWidth).Render(a.renderTelegramCard(cardWidth - 4))
	gmail := a.theme.CardStyle.Width(cardWidth).Render(a.renderGmailCard(cardWidth - 4))

	var cards string
	if sideBySide {
		cards = lipgloss.JoinHorizontal(lipgloss.Top, telegram, " ", gmail)
	} else {
		cards = lipgloss.JoinVertical(lipgloss.Left, telegram, gmail)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", cards)
}

func (a App) renderWelcome(width int) string {
	name, email := listing.FirstName(""), ""
	if a.user != nil {
		name = listing.FirstName(a.user.FullName)
		email = a.user.Email
	}

	lines := []string{a.theme.TitleStyle.Render(a.locale.T("dash.welcome", name))}
	if email != "" {
		lines = append(lines, email)
	}
	lines = append(lines, a.theme.MutedStyle.Render(a.locale.T("dash.intro")))

	count := listing.FormatMessageCount(a.count)
	if a.countLoading && a.count == nil {
		count = a.spinner.View() + " " + count
	}
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render(count))
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (a App) renderTelegramCard(width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	parts := []string{
		a.theme.TitleStyle.Render(a.locale.T("telegram.title")),
		a.theme.MutedStyle.Render(a.locale.T("telegram.subtitle")),
		"",
	}

	if a.statusLoading && a.status == nil {
		parts = append(parts, a.spinner.View()+" "+a.locale.T("status.loading"))
		return strings.Join(parts, "\n")
	}

	var snap handshake.Snapshot
	if a.deps.Machine != nil {
		snap = a.deps.Machine.Snapshot()
	}
	pending := a.busy || snap.Pending.Any()

	switch a.telegramMode() {
	case modeConnected:
		parts = append(parts, a.renderMessages(snap, width)...)
		parts = append(parts, a.theme.SuccessBannerStyle.Width(width).Render("✓ "+a.locale.T("telegram.connected_banner")))
		if who := connectedAs(a); who != "" {
			parts = append(parts, a.theme.MutedStyle.Render(a.locale.T("telegram.connected_as", who)))
		}
		parts = append(parts, "")
		if pending {
			parts = append(parts, a.renderButton(a.locale.T("telegram.pending"), true))
		} else {
			parts = append(parts, a.theme.DangerButtonStyle.Render(a.locale.T("telegram.disconnect")+" (d)"))
		}

	case modeCode:
		parts = append(parts, a.renderMessages(snap, width)...)
		parts = append(parts,
			a.theme.InfoBannerStyle.Width(width).Render("ℹ "+a.locale.T("telegram.code_banner")),
			"",
			a.fieldLabel(a.locale.T("telegram.code_label"), a.dashFocus == 0),
			a.codeInput.View(),
			"",
			a.fieldLabel(a.locale.T("telegram.password_label"), a.dashFocus == 1),
			a.passwordInput.View(),
			"",
			a.renderButton(a.locale.T("telegram.verify"), pending),
		)

	default:
		parts = append(parts,
			lipgloss.NewStyle().Bold(true).Render(a.locale.T("telegram.connect_heading")),
			wrap.Foreground(a.theme.TextDim).Render(a.locale.T("telegram.connect_intro")),
			"",
		)
		parts = append(parts, a.renderMessages(snap, width)...)
		parts = append(parts,
			a.fieldLabel(a.locale.T("telegram.phone_label"), true),
			a.phoneInput.View(),
			"",
			a.renderButton(a.locale.T("telegram.send_code"), pending),
		)
	}
	return strings.Join(parts, "\n")
}

func (a App) renderMessages(snap handshake.Snapshot, width int) []string {
	var out []string
	if snap.Success != "" {
		out = append(out, a.theme.SuccessBannerStyle.Width(width).Render(snap.Success), "")
	}
	if snap.Error != "" {
		out = append(out, a.theme.ErrorBannerStyle.Width(width).Render(snap.Error), "")
	}
	return out
}

func (a App) renderGmailCard(width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	parts := []string{
		a.theme.TitleStyle.Render(a.locale.T("gmail.title")),
		a.theme.MutedStyle.Render(a.locale.T("gmail.subtitle")),
		"",
		wrap.Foreground(a.theme.TextDim).Render(a.locale.T("gmail.intro")),
		"",
	}
	if a.gmailBusy {
		parts = append(parts, a.renderButton(a.locale.T("gmail.connecting"), true))
	} else {
		parts = append(parts, a.theme.ButtonStyle.Render(a.locale.T("gmail.connect")+" (ctrl+g)"))
	}
	if a.gmailErr != "" {
		parts = append(parts, "", a.theme.ErrorBannerStyle.Width(width).Render(a.gmailErr))
	} else if a.gmailNotice != "" {
		parts = append(parts, "", a.theme.MutedStyle.Render(a.gmailNotice))
	}
	return strings.Join(parts, "\n")
}

func (a App) fieldLabel(label string, focused bool) string {
	if focused {
		return a.theme.FocusedStyle.Render("› " + label)
	}
	return a.theme.LabelStyle.Render("  " + label)
}

func connectedAs(a App) string {
	if a.status == nil {
		return ""
	}
	switch {
	case a.status.Username != "" && a.status.Phone != "":
		return fmt.Sprintf("@%s (%s)", a.status.Username, a.status.Phone)
	case a.status.Username != "":
		return "@" + a.status.Username
	default:
		return a.status.Phone
	}
}
