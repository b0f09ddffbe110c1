package listing

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgdash/internal/api"
	"msgdash/internal/i18n"
	"msgdash/internal/query"
)

func TestMain(m *testing.M) {
	i18n.Init("en")
	os.Exit(m.Run())
}

func items(n int) []api.Item {
	out := make([]api.Item, n)
	for i := range out {
		out[i] = api.Item{ID: string(rune('a' + i)), Title: "item"}
	}
	return out
}

func TestParamsForPageThree(t *testing.T) {
	v := NewView().WithPage(3)
	v, err := v.WithFilter(FieldCategory, "Meeting")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Page, "changing a filter resets the page")

	v = v.WithPage(3)
	got := v.Params()
	want := api.ListItemsParams{Skip: 10, Limit: 5, Category: "meeting"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestWithFilterResetsPageEvenWhenUnchanged(t *testing.T) {
	v := View{Page: 4, Filters: Filters{Search: "x"}}
	v, err := v.WithFilter(FieldSearch, "x")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Page)
}

func TestEnumFilters(t *testing.T) {
	v := NewView()
	v, err := v.WithFilter(FieldPriority, "HIGH")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, v.Filters.Priority)

	v, err = v.WithFilter(FieldPriority, "")
	require.NoError(t, err)
	assert.Equal(t, Priority(""), v.Filters.Priority)
	assert.Empty(t, v.Params().Priority)

	before := v.WithPage(2)
	after, err := before.WithFilter(FieldCategory, "party")
	require.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, before, after, "invalid value leaves the view unchanged")

	_, err = v.WithFilter(Field("color"), "red")
	require.True(t, errors.Is(err, ErrUnknownField))
}

func TestActionRequiredFilter(t *testing.T) {
	v, err := NewView().WithFilter(FieldActionRequired, "true")
	require.NoError(t, err)
	require.NotNil(t, v.Params().ActionRequired)
	assert.True(t, *v.Params().ActionRequired)
	assert.Equal(t, "true", v.Filters.Value(FieldActionRequired))

	v, err = v.WithFilter(FieldActionRequired, "")
	require.NoError(t, err)
	assert.Nil(t, v.Params().ActionRequired)

	_, err = v.WithFilter(FieldActionRequired, "maybe")
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestWithPageClamps(t *testing.T) {
	assert.Equal(t, 1, NewView().WithPage(0).Page)
	assert.Equal(t, 1, NewView().WithPage(-3).Page)
	assert.Equal(t, 0, View{}.Params().Skip)
}

func TestKeyUnderItemsPrefix(t *testing.T) {
	v, _ := NewView().WithFilter(FieldCategory, "meeting")
	v = v.WithPage(2)
	assert.True(t, strings.HasPrefix(v.Key(), query.ItemsPrefix))
	assert.Equal(t, `["items",{"page":2,"filters":{"category":"meeting"}}]`, v.Key())
	assert.NotEqual(t, v.Key(), v.WithPage(3).Key())
	assert.Equal(t, View{}.Key(), NewView().Key())
}

func TestState(t *testing.T) {
	assert.Equal(t, Loading, State(true, nil))
	assert.Equal(t, Table, State(true, &api.ItemsPage{Data: items(2), Count: 2}), "placeholder data keeps the table")
	assert.Equal(t, Empty, State(false, &api.ItemsPage{Count: 12}), "no visible items is empty even with a count")
	assert.Equal(t, Empty, State(false, nil))
	assert.Equal(t, Table, State(false, &api.ItemsPage{Data: items(1), Count: 1}))
}

func TestVisibleAndPagination(t *testing.T) {
	page := &api.ItemsPage{Data: items(7), Count: 12}
	assert.Len(t, Visible(page), PageSize)
	assert.Nil(t, Visible(nil))

	assert.False(t, ShowPagination(5))
	assert.True(t, ShowPagination(6))
	assert.True(t, ShowPagination(12))

	assert.Equal(t, 1, PageCount(0))
	assert.Equal(t, 1, PageCount(5))
	assert.Equal(t, 3, PageCount(12))
}

func TestFiltersValue(t *testing.T) {
	f := Filters{Search: "s", Category: CategoryTask, Priority: PriorityLow, Source: "gmail", MessageType: "text", Contact: "Bob"}
	got := make([]string, 0, len(FilterFields))
	for _, field := range FilterFields {
		got = append(got, f.Value(field))
	}
	assert.Equal(t, []string{"s", "task", "low", "gmail", "text", "Bob"}, got)
	assert.Empty(t, f.Value(FieldActionRequired))
}

func TestFormatMessageCount(t *testing.T) {
	n := func(v int) *int { return &v }
	assert.Equal(t, "Loading...", FormatMessageCount(nil))
	assert.Equal(t, "No messages yet", FormatMessageCount(n(0)))
	assert.Equal(t, "1 Message Processed", FormatMessageCount(n(1)))
	assert.Equal(t, "1,234 Messages Processed", FormatMessageCount(n(1234)))
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2025, time.March, 1, 14, 5, 0, 0, time.Local)
	assert.Equal(t, "Mar 1, 2025, 02:05 PM", FormatDate(ts))
	assert.Empty(t, FormatDate(time.Time{}))
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Ada", FirstName("Ada Lovelace"))
	assert.Equal(t, "User", FirstName("   "))
}

func TestRow(t *testing.T) {
	ts := time.Date(2025, time.March, 1, 9, 30, 0, 0, time.Local)
	got := Row(api.Item{CreatedAt: ts})
	want := []string{"Untitled", "No description", "No classification", "No contact", "Unknown", "Mar 1, 2025, 09:30 AM"}
	assert.Equal(t, want, got)

	got = Row(api.Item{
		Title:          "Standup",
		Source:         "telegram",
		Classification: &api.Classification{Category: "meeting", Priority: "high", Contact: "Bob", ActionRequired: true},
	})
	assert.Equal(t, "Meeting · High !", got[2])
	assert.Equal(t, "Bob", got[3])
	assert.Len(t, Columns(), len(got))
}
