package graph

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/target/totem-api/internal/domain/model"
	"github.com/target/totem-api/internal/ports"
)

// Lists implements ports.ListStore over /sites/{site}/lists.
type Lists struct {
	client *Client
	siteID string
}

var _ ports.ListStore = (*Lists)(nil)

// NewLists binds the list store to one SharePoint site.
func NewLists(client *Client, siteID string) (*Lists, error) {
	if client == nil {
		return nil, errors.New("graph: client is required")
	}
	if strings.TrimSpace(siteID) == "" {
		return nil, errors.New("graph: site id is required")
	}
	return &Lists{client: client, siteID: siteID}, nil
}

type listItem struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

func (l *Lists) listsPath() string {
	return "/sites/" + url.PathEscape(l.siteID) + "/lists"
}

func (l *Lists) itemsPath(listID string) string {
	return l.listsPath() + "/" + url.PathEscape(listID) + "/items"
}

// ListItems reads items with their fields expanded, following pagination.
func (l *Lists) ListItems(ctx context.Context, listID string, q ports.ListQuery) ([]ports.ListItem, error) {
	query := url.Values{}
	if len(q.Select) > 0 {
		query.Set("$expand", "fields($select="+strings.Join(q.Select, ",")+")")
	} else {
		query.Set("$expand", "fields")
	}
	if q.Filter != "" {
		query.Set("$filter", q.Filter)
	}
	if q.OrderBy != "" {
		query.Set("$orderby", q.OrderBy)
	}
	if q.Top > 0 {
		query.Set("$top", strconv.Itoa(q.Top))
	}

	raw, err := collect[listItem](ctx, l.client, request{
		op:     "list_items",
		method: http.MethodGet,
		path:   l.itemsPath(listID),
		query:  query,
		header: http.Header{headerPrefer: {preferNonIndexed}},
	}, q.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]ports.ListItem, 0, len(raw))
	for _, it := range raw {
		items = append(items, ports.ListItem(it))
	}
	return items, nil
}

// CreateItem creates a list item from column values.
func (l *Lists) CreateItem(ctx context.Context, listID string, fields map[string]any) (ports.ListItem, error) {
	var created listItem
	err := l.client.doJSON(ctx, request{
		op:     "create_item",
		method: http.MethodPost,
		path:   l.itemsPath(listID),
		body:   map[string]any{"fields": fields},
	}, &created)
	if err != nil {
		return ports.ListItem{}, err
	}
	return ports.ListItem(created), nil
}

// UpdateItemFields patches only the given columns.
func (l *Lists) UpdateItemFields(ctx context.Context, listID, itemID string, fields map[string]any) error {
	return l.client.doJSON(ctx, request{
		op:     "update_item",
		method: http.MethodPatch,
		path:   l.itemsPath(listID) + "/" + url.PathEscape(itemID) + "/fields",
		body:   fields,
	}, nil)
}

// FindLists returns the site's lists matching an OData filter.
func (l *Lists) FindLists(ctx context.Context, filter string) ([]model.ListInfo, error) {
	query := url.Values{}
	if filter != "" {
		query.Set("$filter", filter)
	}
	return collect[model.ListInfo](ctx, l.client, request{
		op:     "find_lists",
		method: http.MethodGet,
		path:   l.listsPath(),
		query:  query,
	}, 0)
}
