// Package menu holds the service-menu data layer: a repository that loads and
// joins the remote dataset (with a bundled fallback), and an edit session that
// keeps a locally mutable working copy and persists edits back to the store.
package menu

import (
	"context"

	"github.com/gloworganic/site/internal/recordstore"
)

// Store is the slice of the record store the menu layer depends on. It is
// satisfied by *recordstore.Client and by fakes in tests.
type Store interface {
	Configured() bool
	Select(ctx context.Context, table, columns string, order recordstore.Order, dest any) error
	Update(ctx context.Context, table, id string, fields map[string]any, dest any) error
	Insert(ctx context.Context, table string, fields map[string]any, dest any) error
}

const (
	categoriesTable = "service_categories"
	itemsTable      = "service_items"

	categoryColumns = "id,title,description,sort_order"
	itemColumns     = "id,category_id,title,description,price,duration,sort_order"
)

// sortOrderFirst matches the store's display ordering: sort_order ascending,
// rows without a sort order first.
var sortOrderFirst = recordstore.Order{Column: "sort_order", NullsFirst: true}

type categoryRow struct {
	ID          string  `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
}

type itemRow struct {
	ID          string  `json:"id"`
	CategoryID  *string `json:"category_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Duration    *string `json:"duration"`
	SortOrder   *int    `json:"sort_order"`
}

type idRow struct {
	ID string `json:"id"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
