package i18n

import "testing"

func TestNew_English(t *testing.T) {
	i := New("en")
	if i.Locale() != "en" {
		t.Fatalf("Locale()=%q, want en", i.Locale())
	}
	got := i.T("telegram.code_sent")
	if got != "Authentication code sent to your phone" {
		t.Fatalf("T(telegram.code_sent)=%q", got)
	}
}

func TestNew_Chinese(t *testing.T) {
	i := New("zh-CN")
	if i.Locale() != "zh-CN" {
		t.Fatalf("Locale()=%q, want zh-CN", i.Locale())
	}
	got := i.T("items.empty")
	if got != "没有找到条目" {
		t.Fatalf("T(items.empty)=%q, want 没有找到条目", got)
	}
}

func TestNew_ChineseFromLang(t *testing.T) {
	i := New("zh_CN.UTF-8")
	if i.Locale() != "zh-CN" {
		t.Fatalf("Locale()=%q, want zh-CN", i.Locale())
	}
	got := i.T("gmail.connecting")
	if got != "连接中..." {
		t.Fatalf("T(gmail.connecting)=%q, want 连接中...", got)
	}
}

func TestT_WithArgs(t *testing.T) {
	i := New("en")
	got := i.T("dash.welcome", "Ada")
	if got != "Welcome back, Ada!" {
		t.Fatalf("T with args=%q, want Welcome back, Ada!", got)
	}
}

func TestT_MissingKey(t *testing.T) {
	i := New("en")
	got := i.T("nonexistent.key")
	if got != "nonexistent.key" {
		t.Fatalf("T missing key=%q, want key itself", got)
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en_US.UTF-8", "en"},
		{"zh_CN.UTF-8", "zh-CN"},
		{"zh_TW", "zh-CN"},
		{"en", "en"},
		{"", "en"},
		{"fr_FR", "fr-FR"},
	}
	for _, tt := range tests {
		got := normalizeLocale(tt.input)
		if got != tt.expected {
			t.Errorf("normalizeLocale(%q)=%q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGlobal(t *testing.T) {
	g := Global()
	if g == nil {
		t.Fatal("Global() should not be nil")
	}
	// 应该返回同一实例 / Should return same instance
	g2 := Global()
	if g != g2 {
		t.Fatal("Global() should return same instance")
	}
}

func TestChineseFallsBackToEnglish(t *testing.T) {
	i := New("zh-CN")
	// telegram.phone_placeholder 只有英文 / only present in the English catalog
	if got := i.T("telegram.phone_placeholder"); got != "+1234567890" {
		t.Fatalf("fallback=%q", got)
	}
}

func TestEveryChineseKeyExistsInEnglish(t *testing.T) {
	for k := range ZhCNMessages {
		if _, ok := EnMessages[k]; !ok {
			t.Errorf("zh-CN key %q missing from English catalog", k)
		}
	}
}

func TestDetectLocaleFromEnv(t *testing.T) {
	t.Setenv("MSGDASH_LANG", "zh_CN.UTF-8")
	if got := DetectLocale(); got != "zh-CN" {
		t.Fatalf("DetectLocale()=%q, want zh-CN", got)
	}
}
