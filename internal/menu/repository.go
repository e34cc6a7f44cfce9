package menu

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gloworganic/site/internal/model"
)

// Snapshot is the repository's observable state after a load.
type Snapshot struct {
	Categories    []model.ServiceCategory `json:"categories"`
	Loading       bool                    `json:"loading"`
	Err           string                  `json:"error,omitempty"`
	UsingFallback bool                    `json:"using_fallback"`
}

// Repository loads the service menu from the record store, joining items to
// categories client-side, and falls back to the bundled dataset when the store
// is unconfigured or a read fails. Reload always rebuilds the whole dataset;
// there is no incremental refresh. Concurrent reloads are not sequenced — the
// last one to finish wins.
type Repository struct {
	store  Store
	logger *slog.Logger

	mu   sync.RWMutex
	snap Snapshot
}

// NewRepository creates a repository seeded with the fallback dataset and
// Loading set, mirroring the state before the first reload completes.
func NewRepository(store Store, logger *slog.Logger) *Repository {
	return &Repository{
		store:  store,
		logger: logger,
		snap: Snapshot{
			Categories: FallbackCategories(),
			Loading:    true,
		},
	}
}

// Snapshot returns a deep copy of the current state. The canonical dataset is
// never handed out by reference; edit sessions work on their own copy.
func (r *Repository) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := r.snap
	snap.Categories = model.CloneCategories(r.snap.Categories)
	return snap
}

// UsingFallback reports whether the current dataset is the bundled fallback.
func (r *Repository) UsingFallback() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap.UsingFallback
}

// Reload performs a full load and replaces the snapshot. An unconfigured store
// yields the fallback dataset with no error: missing configuration is a
// deployment concern, not a data error. A failed read yields the fallback
// dataset plus the first failure message, category read first.
func (r *Repository) Reload(ctx context.Context) Snapshot {
	if r.store == nil || !r.store.Configured() {
		return r.set(Snapshot{
			Categories:    FallbackCategories(),
			UsingFallback: true,
		})
	}

	r.mu.Lock()
	r.snap.Loading = true
	r.snap.Err = ""
	r.mu.Unlock()

	var (
		wg       sync.WaitGroup
		catRows  []categoryRow
		itemRows []itemRow
		catErr   error
		itemErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		catErr = r.store.Select(ctx, categoriesTable, categoryColumns, sortOrderFirst, &catRows)
	}()
	go func() {
		defer wg.Done()
		itemErr = r.store.Select(ctx, itemsTable, itemColumns, sortOrderFirst, &itemRows)
	}()
	wg.Wait()

	if catErr != nil || itemErr != nil {
		err := catErr
		if err == nil {
			err = itemErr
		}
		r.logger.Warn("menu load failed, using fallback", "error", err)
		return r.set(Snapshot{
			Categories:    FallbackCategories(),
			UsingFallback: true,
			Err:           err.Error(),
		})
	}

	return r.set(Snapshot{Categories: join(catRows, itemRows)})
}

// join groups items under their categories, preserving the order both queries
// returned. Items whose foreign key does not resolve to a loaded category are
// dropped.
func join(catRows []categoryRow, itemRows []itemRow) []model.ServiceCategory {
	itemsByCategory := make(map[string][]model.ServiceItem)
	for _, row := range itemRows {
		if row.CategoryID == nil || *row.CategoryID == "" {
			continue
		}
		itemsByCategory[*row.CategoryID] = append(itemsByCategory[*row.CategoryID], model.ServiceItem{
			ID:          row.ID,
			Title:       deref(row.Title),
			Description: deref(row.Description),
			Price:       deref(row.Price),
			Duration:    deref(row.Duration),
			SortOrder:   row.SortOrder,
		})
	}

	categories := make([]model.ServiceCategory, 0, len(catRows))
	for _, row := range catRows {
		items := itemsByCategory[row.ID]
		if items == nil {
			items = []model.ServiceItem{}
		}
		categories = append(categories, model.ServiceCategory{
			ID:          row.ID,
			Title:       deref(row.Title),
			Description: deref(row.Description),
			SortOrder:   row.SortOrder,
			Items:       items,
		})
	}
	return categories
}

func (r *Repository) set(snap Snapshot) Snapshot {
	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
	return snap
}
