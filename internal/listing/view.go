// Package listing holds the paginated, filtered items view model.
package listing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"msgdash/internal/api"
	"msgdash/internal/query"
)

// PageSize 每页固定条目数 / fixed number of items per page
const PageSize = 5

var (
	ErrUnknownField = errors.New("unknown filter field")
	ErrInvalidValue = errors.New("invalid filter value")
)

// Category 条目分类 / item category
type Category string

const (
	CategoryMeeting     Category = "meeting"
	CategoryTask        Category = "task"
	CategoryInformation Category = "information"
	CategoryThought     Category = "thought"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryMeeting, CategoryTask, CategoryInformation, CategoryThought}

// Priority 条目优先级 / item priority
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParseCategory is case-insensitive; "" means unset.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: category %q", ErrInvalidValue, s)
}

// ParsePriority is case-insensitive; "" means unset.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, p := range Priorities {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: priority %q", ErrInvalidValue, s)
}

// Field 过滤字段名 / filter field name
type Field string

const (
	FieldSearch         Field = "search"
	FieldCategory       Field = "category"
	FieldPriority       Field = "priority"
	FieldSource         Field = "source"
	FieldMessageType    Field = "message_type"
	FieldContact        Field = "contact"
	FieldActionRequired Field = "action_required"
)

// FilterFields are the fields offered as inputs, in form order.
var FilterFields = []Field{FieldSearch, FieldCategory, FieldPriority, FieldSource, FieldMessageType, FieldContact}

type Filters struct {
	Search         string   `json:"search,omitempty"`
	Category       Category `json:"category,omitempty"`
	Priority       Priority `json:"priority,omitempty"`
	Source         string   `json:"source,omitempty"`
	MessageType    string   `json:"message_type,omitempty"`
	Contact        string   `json:"contact,omitempty"`
	ActionRequired *bool    `json:"action_required,omitempty"`
}

// Value returns the text form of one filter ("" when unset).
func (f Filters) Value(field Field) string {
	switch field {
	case FieldSearch:
		return f.Search
	case FieldCategory:
		return string(f.Category)
	case FieldPriority:
		return string(f.Priority)
	case FieldSource:
		return f.Source
	case FieldMessageType:
		return f.MessageType
	case FieldContact:
		return f.Contact
	case FieldActionRequired:
		if f.ActionRequired == nil {
			return ""
		}
		return strconv.FormatBool(*f.ActionRequired)
	}
	return ""
}

// View 当前页码与过滤条件 / current page and filters
type View struct {
	Page    int     `json:"page"`
	Filters Filters `json:"filters"`
}

func NewView() View {
	return View{Page: 1}
}

// WithFilter 设置一个过滤条件并回到第一页
// WithFilter sets one filter and resets the page to 1. An invalid value leaves
// the view unchanged and returns an error.
func (v View) WithFilter(field Field, value string) (View, error) {
	f := v.Filters
	switch field {
	case FieldSearch:
		f.Search = value
	case FieldCategory:
		c, err := ParseCategory(value)
		if err != nil {
			return v, err
		}
		f.Category = c
	case FieldPriority:
		p, err := ParsePriority(value)
		if err != nil {
			return v, err
		}
		f.Priority = p
	case FieldSource:
		f.Source = value
	case FieldMessageType:
		f.MessageType = value
	case FieldContact:
		f.Contact = value
	case FieldActionRequired:
		value = strings.TrimSpace(value)
		if value == "" {
			f.ActionRequired = nil
			break
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return v, fmt.Errorf("%w: action_required %q", ErrInvalidValue, value)
		}
		f.ActionRequired = &b
	default:
		return v, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return View{Page: 1, Filters: f}, nil
}

// WithPage moves to page n (at least 1), keeping the filters.
func (v View) WithPage(n int) View {
	if n < 1 {
		n = 1
	}
	v.Page = n
	return v
}

func (v View) page() int {
	if v.Page < 1 {
		return 1
	}
	return v.Page
}

// Params 转为列表接口参数 / converts the view to list request parameters
func (v View) Params() api.ListItemsParams {
	f := v.Filters
	return api.ListItemsParams{
		Skip:           (v.page() - 1) * PageSize,
		Limit:          PageSize,
		Search:         f.Search,
		Category:       string(f.Category),
		Priority:       string(f.Priority),
		Source:         f.Source,
		MessageType:    f.MessageType,
		Contact:        f.Contact,
		ActionRequired: f.ActionRequired,
	}
}

// Key is the query cache key; every view key starts with query.ItemsPrefix.
func (v View) Key() string {
	return query.KeyOf("items", View{Page: v.page(), Filters: v.Filters})
}

// Phase 列表区域的显示状态 / display state of the listing area
type Phase int

const (
	Loading Phase = iota
	Empty
	Table
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Empty:
		return "empty"
	default:
		return "table"
	}
}

// State 加载中且没有占位数据时显示 Loading；无可见条目时显示 Empty
// State shows Loading only while loading without placeholder data. Zero
// visible items is Empty whatever the filters are.
func State(loading bool, page *api.ItemsPage) Phase {
	if page == nil {
		if loading {
			return Loading
		}
		return Empty
	}
	if len(Visible(page)) == 0 {
		return Empty
	}
	return Table
}

// Visible returns at most PageSize items of page.
func Visible(page *api.ItemsPage) []api.Item {
	if page == nil {
		return nil
	}
	if len(page.Data) > PageSize {
		return page.Data[:PageSize]
	}
	return page.Data
}

// ShowPagination reports whether the total spans more than one page.
func ShowPagination(count int) bool {
	return count > PageSize
}

// PageCount is the number of pages for count items, at least 1.
func PageCount(count int) int {
	if count <= 0 {
		return 1
	}
	return (count + PageSize - 1) / PageSize
}
