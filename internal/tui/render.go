package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"msgdash/internal/api"
	"msgdash/internal/i18n"
	"msgdash/internal/listing"
)

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

// ItemMarkdown 条目详情的 markdown 表示
// ItemMarkdown builds the markdown shown in the item detail pane
func ItemMarkdown(it api.Item) string {
	row := listing.Row(it)
	cols := listing.Columns()

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(row[0]))
	fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(row[1]))

	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	for i := 2; i < len(row); i++ {
		fmt.Fprintf(&b, "| **%s** | %s |\n", cols[i], escapeCell(row[i]))
	}
	if c := it.Classification; c != nil {
		if c.ActionRequired {
			fmt.Fprintf(&b, "| **%s** | ✓ |\n", i18n.T("items.action_required"))
		}
		if s := strings.TrimSpace(c.Summary); s != "" {
			fmt.Fprintf(&b, "\n> %s\n", strings.ReplaceAll(s, "\n", "\n> "))
		}
	}
	return b.String()
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("#", `\#`, "*", `\*`, "_", `\_`).Replace(s)
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
