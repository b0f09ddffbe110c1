package tui

import (
	"strings"
	"testing"
	"time"

	"msgdash/internal/api"
)

func TestRenderMarkdown_Basic(t *testing.T) {
	input := "# Hello\n\nThis is **bold** text."
	result := RenderMarkdown(input, 80)
	if result == "" {
		t.Fatal("RenderMarkdown returned empty")
	}
	// Glamour 应该渲染了标题 / Glamour should have rendered the heading
	if !strings.Contains(result, "Hello") {
		t.Fatalf("result should contain 'Hello': %q", result)
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	if RenderMarkdown("", 80) != "" {
		t.Fatal("empty input should return empty")
	}
	if RenderMarkdown("  ", 80) != "" {
		t.Fatal("whitespace input should return empty")
	}
}

func TestItemMarkdown(t *testing.T) {
	it := api.Item{
		Title:       "Standup #42",
		Description: "Daily sync",
		Source:      "telegram",
		CreatedAt:   time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local),
		Classification: &api.Classification{
			Category:       "meeting",
			Priority:       "high",
			Contact:        "Bob | Alice",
			ActionRequired: true,
			Summary:        "Move standup to 10am",
		},
	}
	md := ItemMarkdown(it)
	for _, want := range []string{
		`# Standup \#42`,
		"Daily sync",
		"| **Classification** | Meeting · High ! |",
		`Bob \| Alice`,
		"| **Action required** | ✓ |",
		"> Move standup to 10am",
		"Mar 1, 2025, 09:30 AM",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}

	rendered := RenderMarkdown(md, 80)
	if !strings.Contains(rendered, "Daily sync") {
		t.Fatalf("rendered detail missing description: %q", rendered)
	}
}

func TestItemMarkdownDefaults(t *testing.T) {
	md := ItemMarkdown(api.Item{})
	if !strings.Contains(md, "# Untitled") || !strings.Contains(md, "No description") {
		t.Fatalf("defaults missing:\n%s", md)
	}
	if strings.Contains(md, ">") {
		t.Fatalf("no summary expected:\n%s", md)
	}
}

func TestThemeByName(t *testing.T) {
	if ThemeByName("LIGHT").Primary != LightTheme().Primary {
		t.Fatal("light theme not selected")
	}
	if ThemeByName("neon").Primary != DarkTheme().Primary {
		t.Fatal("unknown theme should fall back to dark")
	}
}
