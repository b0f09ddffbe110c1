package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme 定义 TUI 主题色彩和样式
// Theme defines TUI colors and styles
type Theme struct {
	// 基础色 / Base colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Danger    lipgloss.Color
	Success   lipgloss.Color
	Info      lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	TextDim   lipgloss.Color
	BgBar     lipgloss.Color
	Border    lipgloss.Color

	// 预构建样式 / Pre-built styles
	TitleStyle         lipgloss.Style
	ActiveTabStyle     lipgloss.Style
	InactiveTabStyle   lipgloss.Style
	StatusBarStyle     lipgloss.Style
	CardStyle          lipgloss.Style
	LabelStyle         lipgloss.Style
	ErrorStyle         lipgloss.Style
	SuccessStyle       lipgloss.Style
	MutedStyle         lipgloss.Style
	SuccessBannerStyle lipgloss.Style
	ErrorBannerStyle   lipgloss.Style
	InfoBannerStyle    lipgloss.Style
	ButtonStyle        lipgloss.Style
	ButtonBusyStyle    lipgloss.Style
	DangerButtonStyle  lipgloss.Style
	SelectorStyle      lipgloss.Style
	FocusedStyle       lipgloss.Style
}

type palette struct {
	primary, secondary, danger, success, info, muted, text, textDim, bgBar, border string
}

// DarkTheme 暗色主题（默认）
// DarkTheme is the default dark theme
func DarkTheme() Theme {
	return buildTheme(palette{
		primary:   "#7C3AED",
		secondary: "#06B6D4",
		danger:    "#EF4444",
		success:   "#10B981",
		info:      "#38BDF8",
		muted:     "#6B7280",
		text:      "#E5E7EB",
		textDim:   "#9CA3AF",
		bgBar:     "#111827",
		border:    "#374151",
	})
}

// LightTheme 亮色主题 / light theme
func LightTheme() Theme {
	return buildTheme(palette{
		primary:   "#6D28D9",
		secondary: "#0E7490",
		danger:    "#B91C1C",
		success:   "#047857",
		info:      "#0369A1",
		muted:     "#6B7280",
		text:      "#111827",
		textDim:   "#4B5563",
		bgBar:     "#E5E7EB",
		border:    "#D1D5DB",
	})
}

// ThemeByName returns the theme for ui.theme; unknown names fall back to dark.
func ThemeByName(name string) Theme {
	if strings.EqualFold(strings.TrimSpace(name), "light") {
		return LightTheme()
	}
	return DarkTheme()
}

func buildTheme(p palette) Theme {
	t := Theme{
		Primary:   lipgloss.Color(p.primary),
		Secondary: lipgloss.Color(p.secondary),
		Danger:    lipgloss.Color(p.danger),
		Success:   lipgloss.Color(p.success),
		Info:      lipgloss.Color(p.info),
		Muted:     lipgloss.Color(p.muted),
		Text:      lipgloss.Color(p.text),
		TextDim:   lipgloss.Color(p.textDim),
		BgBar:     lipgloss.Color(p.bgBar),
		Border:    lipgloss.Color(p.border),
	}

	t.TitleStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.ActiveTabStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(t.Primary).
		Padding(0, 2).
		Bold(true)

	t.InactiveTabStyle = lipgloss.NewStyle().
		Foreground(t.TextDim).
		Padding(0, 2)

	t.StatusBarStyle = lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.BgBar)

	t.CardStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	t.LabelStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		Bold(true)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(t.Danger).
		Bold(true)

	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(t.Success)

	t.MutedStyle = lipgloss.NewStyle().
		Foreground(t.Muted)

	t.SuccessBannerStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(t.Success).
		PaddingLeft(1)

	t.ErrorBannerStyle = t.SuccessBannerStyle.
		Foreground(t.Danger).
		BorderForeground(t.Danger)

	t.InfoBannerStyle = t.SuccessBannerStyle.
		Foreground(t.Info).
		BorderForeground(t.Info)

	t.ButtonStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(t.Primary).
		Padding(0, 1)

	t.ButtonBusyStyle = lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Border).
		Padding(0, 1)

	t.DangerButtonStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(t.Danger).
		Bold(true).
		Padding(0, 1)

	t.SelectorStyle = lipgloss.NewStyle().
		Foreground(t.Text)

	t.FocusedStyle = lipgloss.NewStyle().
		Foreground(t.Secondary).
		Bold(true)

	return t
}
