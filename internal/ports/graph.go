package ports

import (
	"context"

	"github.com/target/totem-api/internal/domain/model"
)

// ListItem is a raw list item as returned by the list store.
type ListItem struct {
	ID     string
	Fields map[string]any
}

// ListQuery describes an item-collection read. Values interpolated into Filter
// must already be escaped.
type ListQuery struct {
	Select  []string
	Filter  string
	OrderBy string
	// Top is the page size requested from the store.
	Top int
	// Limit stops pagination once this many items were collected. Zero reads every page.
	Limit int
}

// ListStore is the remote item-collection store backing the kiosk lists.
type ListStore interface {
	ListItems(ctx context.Context, listID string, q ListQuery) ([]ListItem, error)
	CreateItem(ctx context.Context, listID string, fields map[string]any) (ListItem, error)
	UpdateItemFields(ctx context.Context, listID, itemID string, fields map[string]any) error
	FindLists(ctx context.Context, filter string) ([]model.ListInfo, error)
}

// GraphDirectory exposes the directory-side Graph reads used by the kiosk.
type GraphDirectory interface {
	Me(ctx context.Context) (model.UserProfile, error)
	SearchSites(ctx context.Context, query string) ([]model.SharePointSite, error)
	SiteByPath(ctx context.Context, hostname, path string) (model.SharePointSite, error)
	SearchUsers(ctx context.Context, query string, top int) ([]model.DirectoryUser, error)
	UserPhoto(ctx context.Context, userID string) (model.Photo, error)
}
