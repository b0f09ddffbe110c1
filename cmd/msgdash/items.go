package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"msgdash/internal/api"
	"msgdash/internal/i18n"
	"msgdash/internal/listing"
	"msgdash/internal/query"
)

type itemsResult struct {
	Page  int        `json:"page" yaml:"page"`
	Pages int        `json:"pages" yaml:"pages"`
	Count int        `json:"count" yaml:"count"`
	Items []api.Item `json:"items" yaml:"items"`
}

type itemsFlags struct {
	page           int
	search         string
	category       string
	priority       string
	source         string
	messageType    string
	contact        string
	actionRequired string
}

// view 将命令行参数转换为列表视图；非法取值属于用法错误
// view turns the flags into a listing view; invalid values are usage errors
func (f itemsFlags) view() (listing.View, error) {
	v := listing.NewView()
	values := []struct {
		field listing.Field
		value string
	}{
		{listing.FieldSearch, f.search},
		{listing.FieldCategory, f.category},
		{listing.FieldPriority, f.priority},
		{listing.FieldSource, f.source},
		{listing.FieldMessageType, f.messageType},
		{listing.FieldContact, f.contact},
		{listing.FieldActionRequired, f.actionRequired},
	}
	for _, fv := range values {
		if strings.TrimSpace(fv.value) == "" {
			continue
		}
		next, err := v.WithFilter(fv.field, fv.value)
		if err != nil {
			return listing.View{}, err
		}
		v = next
	}
	return v.WithPage(f.page), nil
}

func newItemsCommand(opts *rootOptions) *cobra.Command {
	var f itemsFlags
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List classified message items, five per page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := f.view()
			if err != nil {
				return wrapExitError(exitUsage, "invalid filter", err)
			}

			e, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			defer e.Close()

			page, err := loadItems(cmd.Context(), e, view)
			if err != nil {
				return newExitError(exitFailure, i18n.T("items.load_failed", err.Error()))
			}
			res := itemsResult{
				Page:  view.Page,
				Pages: listing.PageCount(page.Count),
				Count: page.Count,
				Items: listing.Visible(&page),
			}
			return e.out.Success(res, func(w io.Writer) { printItems(w, res) })
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.page, "page", 1, "page number (1-based)")
	flags.StringVar(&f.search, "search", "", "search in title and description")
	flags.StringVar(&f.category, "category", "", "meeting|task|information|thought")
	flags.StringVar(&f.priority, "priority", "", "low|medium|high")
	flags.StringVar(&f.source, "source", "", "source filter")
	flags.StringVar(&f.messageType, "message-type", "", "message type filter")
	flags.StringVar(&f.contact, "contact", "", "contact name filter")
	flags.StringVar(&f.actionRequired, "action-required", "", "true|false")
	return cmd
}

func loadItems(ctx context.Context, e *env, view listing.View) (api.ItemsPage, error) {
	params := view.Params()
	return query.Get(ctx, e.build.Cache, view.Key(), func(ctx context.Context) (api.ItemsPage, error) {
		return e.build.Client.ReadItems(ctx, params)
	})
}

var cellReplacer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

func printItems(w io.Writer, res itemsResult) {
	if len(res.Items) == 0 {
		fmt.Fprintln(w, i18n.T("items.empty"))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(listing.Columns(), "\t"))
	for _, it := range res.Items {
		row := listing.Row(it)
		for i := range row {
			row[i] = cellReplacer.Replace(row[i])
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%s · %s: %d\n", i18n.T("items.page", res.Page, res.Pages), i18n.T("cli.total"), res.Count)
}
