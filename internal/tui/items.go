package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"msgdash/internal/api"
	"msgdash/internal/i18n"
	"msgdash/internal/listing"
	"msgdash/internal/query"
)

// tableFocus 焦点位于表格时的索引（过滤字段之后）
// tableFocus is the focus index of the table, right after the filter fields
var tableFocus = len(listing.FilterFields)

// createdWidth fits listing.DateLayout.
const createdWidth = 21

func isSelector(field listing.Field) bool {
	return field == listing.FieldCategory || field == listing.FieldPriority
}

func categoryOptions() []string {
	out := []string{""}
	for _, c := range listing.Categories {
		out = append(out, string(c))
	}
	return out
}

func priorityOptions() []string {
	out := []string{""}
	for _, p := range listing.Priorities {
		out = append(out, string(p))
	}
	return out
}

func filterPlaceholder(field listing.Field) string {
	if field == listing.FieldSearch {
		return i18n.T("items.search")
	}
	return ""
}

func filterLabel(field listing.Field) string {
	switch field {
	case listing.FieldSearch:
		return i18n.T("items.search_label")
	case listing.FieldCategory:
		return i18n.T("items.category")
	case listing.FieldPriority:
		return i18n.T("items.priority")
	case listing.FieldSource:
		return i18n.T("items.source")
	case listing.FieldMessageType:
		return i18n.T("items.message_type")
	case listing.FieldContact:
		return i18n.T("items.contact")
	}
	return string(field)
}

func (a App) updateItemsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.detail != nil {
		if key.Matches(msg, a.keys.Back) {
			a.detail = nil
			a.applyFocus()
			return a, nil
		}
		var cmd tea.Cmd
		a.detailView, cmd = a.detailView.Update(msg)
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.PrevPage):
		cmd := a.gotoPage(a.view.Page - 1)
		return a, cmd
	case key.Matches(msg, a.keys.NextPage):
		cmd := a.gotoPage(a.view.Page + 1)
		return a, cmd
	case key.Matches(msg, a.keys.NextField):
		a.itemsFocus = (a.itemsFocus + 1) % (tableFocus + 1)
		a.applyFocus()
		return a, nil
	case key.Matches(msg, a.keys.PrevField):
		a.itemsFocus = (a.itemsFocus + tableFocus) % (tableFocus + 1)
		a.applyFocus()
		return a, nil
	}

	if a.itemsFocus == tableFocus {
		switch {
		case key.Matches(msg, a.keys.TablePrev):
			cmd := a.gotoPage(a.view.Page - 1)
			return a, cmd
		case key.Matches(msg, a.keys.TableNext):
			cmd := a.gotoPage(a.view.Page + 1)
			return a, cmd
		case key.Matches(msg, a.keys.Submit):
			a.openDetail()
			return a, nil
		}
		var cmd tea.Cmd
		a.table, cmd = a.table.Update(msg)
		return a, cmd
	}

	field := listing.FilterFields[a.itemsFocus]
	if isSelector(field) {
		step := 0
		switch {
		case key.Matches(msg, a.keys.CycleNext):
			step = 1
		case key.Matches(msg, a.keys.CyclePrev):
			step = -1
		default:
			return a, nil
		}
		var value string
		if field == listing.FieldCategory {
			opts := categoryOptions()
			a.categoryIdx = (a.categoryIdx + step + len(opts)) % len(opts)
			value = opts[a.categoryIdx]
		} else {
			opts := priorityOptions()
			a.priorityIdx = (a.priorityIdx + step + len(opts)) % len(opts)
			value = opts[a.priorityIdx]
		}
		cmd := a.setFilter(field, value)
		return a, cmd
	}

	before := a.filters[a.itemsFocus].Value()
	var cmd tea.Cmd
	a.filters[a.itemsFocus], cmd = a.filters[a.itemsFocus].Update(msg)
	if after := a.filters[a.itemsFocus].Value(); after != before {
		fetch := a.setFilter(field, after)
		return a, tea.Batch(cmd, fetch)
	}
	return a, cmd
}

func (a *App) setFilter(field listing.Field, value string) tea.Cmd {
	v, err := a.view.WithFilter(field, value)
	if err != nil {
		log.Warn().Err(err).Str("field", string(field)).Msg("tui: reject filter value")
		return nil
	}
	return a.setView(v)
}

func (a *App) gotoPage(n int) tea.Cmd {
	if n < 1 || n == a.view.Page {
		return nil
	}
	if a.page != nil && n > listing.PageCount(a.page.Count) {
		return nil
	}
	return a.setView(a.view.WithPage(n))
}

// setView 切换视图；上一页数据作为占位保留直到新数据到达
// setView switches to v. The previous page stays as placeholder data until
// the new one arrives, unless the cache already holds the new view.
func (a *App) setView(v listing.View) tea.Cmd {
	a.view = v
	a.persistView()
	a.itemsLoading = true
	a.itemsErr = ""
	if a.deps.Cache != nil {
		if p, ok := query.Peek[api.ItemsPage](a.deps.Cache, v.Key()); ok {
			a.page = &p
		}
	}
	a.syncTable()
	return fetchItemsCmd(a.deps.Backend, a.deps.Cache, v)
}

// applyItems 只接受当前视图的响应 / only responses for the current view apply
func (a App) applyItems(msg ItemsMsg) App {
	if msg.Key != a.view.Key() {
		log.Debug().Str("key", msg.Key).Msg("tui: ignore items for a previous view")
		return a
	}
	a.itemsLoading = false
	if msg.Err != nil {
		a.itemsErr = i18n.T("items.load_failed", msg.Err.Error())
		return a
	}
	a.itemsErr = ""
	p := msg.Page
	a.page = &p
	a.syncTable()
	return a
}

func (a *App) openDetail() {
	visible := listing.Visible(a.page)
	idx := a.table.Cursor()
	if idx < 0 || idx >= len(visible) {
		return
	}
	it := visible[idx]
	a.detail = &it
	a.detailView.SetContent(RenderMarkdown(ItemMarkdown(it), a.detailView.Width))
	a.detailView.GotoTop()
	a.applyFocus()
}

func (a *App) syncTable() {
	visible := listing.Visible(a.page)
	rows := make([]table.Row, 0, len(visible))
	for _, it := range visible {
		rows = append(rows, table.Row(listing.Row(it)))
	}
	a.table.SetRows(rows)
	if c := a.table.Cursor(); c >= len(rows) || c < 0 {
		a.table.SetCursor(0)
	}

	count := 0
	if a.page != nil {
		count = a.page.Count
	}
	a.pager.SetTotalPages(count)
	a.pager.Page = a.view.Page - 1
	if a.pager.Page >= a.pager.TotalPages {
		a.pager.Page = a.pager.TotalPages - 1
	}
	if a.pager.Page < 0 {
		a.pager.Page = 0
	}
}

func (a *App) resizeTable(width int) {
	cols := listing.Columns()
	// 每列两侧各一格内边距 / each cell is padded by one space on both sides
	avail := width - 2*len(cols) - 2
	fixed := []int{0, 0, 20, 14, 10, createdWidth}
	rest := avail
	for _, w := range fixed {
		rest -= w
	}
	if rest < 20 {
		rest = 20
	}
	titleW := rest * 45 / 100
	fixed[0] = titleW
	fixed[1] = rest - titleW

	columns := make([]table.Column, len(cols))
	for i, title := range cols {
		columns[i] = table.Column{Title: title, Width: fixed[i]}
	}
	a.table.SetColumns(columns)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(a.theme.Border).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(a.theme.Primary).
		Bold(false)
	a.table.SetStyles(styles)
}

// --- 渲染 / Rendering ---

func (a App) renderItems(width int) string {
	parts := []string{a.theme.TitleStyle.Render(a.locale.T("items.title")), ""}

	var cells []string
	for i, field := range listing.FilterFields {
		focused := a.detail == nil && a.itemsFocus == i
		var value string
		switch field {
		case listing.FieldCategory:
			value = a.renderSelector(listing.CategoryLabel(listing.Category(categoryOptions()[a.categoryIdx])), focused)
		case listing.FieldPriority:
			value = a.renderSelector(listing.PriorityLabel(listing.Priority(priorityOptions()[a.priorityIdx])), focused)
		default:
			value = a.filters[i].View()
		}
		cell := lipgloss.JoinVertical(lipgloss.Left, a.fieldLabel(filterLabel(field), focused), value)
		cells = append(cells, lipgloss.NewStyle().Width(24).Render(cell))
	}
	half := len(cells) / 2
	parts = append(parts,
		lipgloss.JoinHorizontal(lipgloss.Top, cells[:half]...),
		lipgloss.JoinHorizontal(lipgloss.Top, cells[half:]...),
		"",
	)

	if a.detail != nil {
		parts = append(parts, a.detailView.View())
		return strings.Join(parts, "\n")
	}

	switch listing.State(a.itemsLoading, a.page) {
	case listing.Loading:
		parts = append(parts, a.spinner.View()+" "+a.locale.T("status.loading"))
	case listing.Empty:
		parts = append(parts, a.theme.MutedStyle.Render("  "+a.locale.T("items.empty")))
	default:
		parts = append(parts, a.table.View())
		if a.page != nil && listing.ShowPagination(a.page.Count) {
			label := a.locale.T("items.page", a.view.Page, listing.PageCount(a.page.Count))
			parts = append(parts, "", label+"  "+a.pager.View())
		}
	}
	if a.itemsErr != "" {
		parts = append(parts, "", a.theme.ErrorStyle.Render(a.itemsErr))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(parts, "\n"))
}

func (a App) renderSelector(label string, focused bool) string {
	text := "‹ " + label + " ›"
	if focused {
		return a.theme.FocusedStyle.Render(text)
	}
	return a.theme.SelectorStyle.Render(text)
}
