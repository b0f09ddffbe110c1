package listing

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"msgdash/internal/api"
	"msgdash/internal/i18n"
)

// DateLayout 列表中的创建时间格式 / created-at layout used in listings
const DateLayout = "Jan 2, 2006, 03:04 PM"

// FormatMessageCount 格式化已处理消息数；nil 表示仍在加载
// FormatMessageCount renders the processed-message total. nil means the count
// is still loading.
func FormatMessageCount(count *int) string {
	if count == nil {
		return i18n.T("count.loading")
	}
	n := *count
	if n <= 0 {
		return i18n.T("count.none")
	}
	p := message.NewPrinter(printerTag())
	formatted := p.Sprintf("%d", n)
	if n == 1 {
		return i18n.T("count.one", formatted)
	}
	return i18n.T("count.many", formatted)
}

func printerTag() language.Tag {
	tag, err := language.Parse(i18n.Global().Locale())
	if err != nil {
		return language.English
	}
	return tag
}

// FormatDate renders t in local time with DateLayout.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DateLayout)
}

// FirstName returns the first word of fullName, or the catalog's default user name.
func FirstName(fullName string) string {
	if fields := strings.Fields(fullName); len(fields) > 0 {
		return fields[0]
	}
	return i18n.T("dash.user_default")
}

// CategoryLabel returns the display label of c.
func CategoryLabel(c Category) string {
	if c == "" {
		return i18n.T("items.any")
	}
	return i18n.T("category." + string(c))
}

func PriorityLabel(p Priority) string {
	if p == "" {
		return i18n.T("items.any")
	}
	return i18n.T("priority." + string(p))
}

// ClassificationLabel 形如 "Meeting · High"
func ClassificationLabel(c *api.Classification) string {
	if c == nil || (c.Category == "" && c.Priority == "") {
		return i18n.T("items.no_classification")
	}
	var parts []string
	if c.Category != "" {
		parts = append(parts, labelOr("category."+strings.ToLower(c.Category), c.Category))
	}
	if c.Priority != "" {
		parts = append(parts, labelOr("priority."+strings.ToLower(c.Priority), c.Priority))
	}
	label := strings.Join(parts, " · ")
	if c.ActionRequired {
		label += " !"
	}
	return label
}

// Row returns the table cells of it: title, description, classification,
// contact, source and created date.
func Row(it api.Item) []string {
	return []string{
		orDefault(it.Title, "items.untitled"),
		orDefault(it.Description, "items.no_description"),
		ClassificationLabel(it.Classification),
		orDefault(it.Contact(), "items.no_contact"),
		orDefault(it.Source, "items.unknown_source"),
		FormatDate(it.CreatedAt),
	}
}

// Columns returns the table header labels matching Row.
func Columns() []string {
	return []string{
		i18n.T("items.col.title"),
		i18n.T("items.col.description"),
		i18n.T("items.col.classification"),
		i18n.T("items.col.contact"),
		i18n.T("items.col.source"),
		i18n.T("items.col.created"),
	}
}

func orDefault(s, key string) string {
	if strings.TrimSpace(s) == "" {
		return i18n.T(key)
	}
	return s
}

// labelOr 目录中没有的值原样显示 / values missing from the catalog are shown as-is
func labelOr(key, raw string) string {
	if v := i18n.T(key); v != key {
		return v
	}
	return raw
}
