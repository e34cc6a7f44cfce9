package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gloworganic/site/internal/model"
)

const (
	// MsgNotConnected is shown when a mutating operation is attempted while
	// the store is unconfigured or the site is running on fallback data. The
	// operation is rejected before any network call.
	MsgNotConnected = "Menu store is not connected. Edits cannot be saved."

	// MsgNoRowsUpdated is shown when the store accepted an update but returned
	// zero rows. The store enforces row-level write authorization silently, so
	// a denied write is indistinguishable from a non-matching filter; this
	// message is the only observable signal of either.
	MsgNoRowsUpdated = "No rows updated. Make sure your account is authorized to edit the menu."

	// savedDisplayWindow is how long a successful save is flagged on its row.
	savedDisplayWindow = 2 * time.Second

	savingNewCategory = "new-category"
	savingNewItem     = "new-item"
)

var (
	ErrNotConnected  = errors.New("menu store is not connected")
	ErrNoRowsUpdated = errors.New("no rows updated")
	ErrNotFound      = errors.New("not present in working copy")
)

// EditSession holds the owner portal's working copy of the menu plus the
// transient per-operation state: the row currently being persisted, the most
// recent save failure, and the row that most recently saved successfully.
//
// The working copy is re-seeded from the repository via Apply whenever the
// canonical dataset changes; local edits are lost if a reload lands before a
// save commits them. That last-writer-wins behavior is accepted.
type EditSession struct {
	store       Store
	repo        *Repository
	logger      *slog.Logger
	savedWindow time.Duration

	mu               sync.Mutex
	categories       []model.ServiceCategory
	activeCategoryID string
	savingID         string
	saveError        string
	justSavedID      string
	savedTimer       *time.Timer
}

// NewEditSession creates an edit session over the repository's data.
func NewEditSession(store Store, repo *Repository, logger *slog.Logger) *EditSession {
	return &EditSession{
		store:       store,
		repo:        repo,
		logger:      logger,
		savedWindow: savedDisplayWindow,
	}
}

// State is a copy of the session's observable state.
type State struct {
	Categories       []model.ServiceCategory `json:"categories"`
	ActiveCategoryID string                  `json:"active_category_id,omitempty"`
	SavingID         string                  `json:"saving_id,omitempty"`
	SaveError        string                  `json:"save_error,omitempty"`
	JustSavedID      string                  `json:"just_saved_id,omitempty"`
}

// State returns a deep copy of the current working copy and operation state.
func (s *EditSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Categories:       model.CloneCategories(s.categories),
		ActiveCategoryID: s.activeCategoryID,
		SavingID:         s.savingID,
		SaveError:        s.saveError,
		JustSavedID:      s.justSavedID,
	}
}

// Apply replaces the working copy with a canonical snapshot. Unsaved local
// edits are discarded. The first category is auto-selected when nothing is.
func (s *EditSession) Apply(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = model.CloneCategories(snap.Categories)
	if s.activeCategoryID == "" && len(s.categories) > 0 {
		s.activeCategoryID = s.categories[0].ID
	}
}

// SelectCategory marks a category as the one being edited.
func (s *EditSession) SelectCategory(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			s.activeCategoryID = id
			return true
		}
	}
	return false
}

// Field edits mutate the working copy only. They never contact the store,
// never touch the repository's canonical dataset, and do not clear a previous
// save error.

func (s *EditSession) SetCategoryTitle(id, v string) bool {
	return s.mutateCategory(id, func(c *model.ServiceCategory) { c.Title = v })
}

func (s *EditSession) SetCategoryDescription(id, v string) bool {
	return s.mutateCategory(id, func(c *model.ServiceCategory) { c.Description = v })
}

func (s *EditSession) SetCategorySortOrder(id string, v *int) bool {
	return s.mutateCategory(id, func(c *model.ServiceCategory) { c.SortOrder = v })
}

func (s *EditSession) SetItemTitle(categoryID, itemID, v string) bool {
	return s.mutateItem(categoryID, itemID, func(it *model.ServiceItem) { it.Title = v })
}

func (s *EditSession) SetItemDescription(categoryID, itemID, v string) bool {
	return s.mutateItem(categoryID, itemID, func(it *model.ServiceItem) { it.Description = v })
}

func (s *EditSession) SetItemPrice(categoryID, itemID, v string) bool {
	return s.mutateItem(categoryID, itemID, func(it *model.ServiceItem) { it.Price = v })
}

func (s *EditSession) SetItemDuration(categoryID, itemID, v string) bool {
	return s.mutateItem(categoryID, itemID, func(it *model.ServiceItem) { it.Duration = v })
}

func (s *EditSession) SetItemSortOrder(categoryID, itemID string, v *int) bool {
	return s.mutateItem(categoryID, itemID, func(it *model.ServiceItem) { it.SortOrder = v })
}

func (s *EditSession) mutateCategory(id string, fn func(*model.ServiceCategory)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			fn(&s.categories[i])
			return true
		}
	}
	return false
}

func (s *EditSession) mutateItem(categoryID, itemID string, fn func(*model.ServiceItem)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID != categoryID {
			continue
		}
		for j := range s.categories[i].Items {
			if s.categories[i].Items[j].ID == itemID {
				fn(&s.categories[i].Items[j])
				return true
			}
		}
	}
	return false
}

// SaveCategory persists the working copy of a category. Success means the
// store reported no error and returned at least one row; zero rows is treated
// as an authorization failure. Every path that contacted the store triggers a
// reload so the working copy never drifts from what the store actually holds.
func (s *EditSession) SaveCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	cat, ok := s.lookupCategory(id)
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if !s.connected() {
		s.saveError = MsgNotConnected
		s.mu.Unlock()
		return ErrNotConnected
	}
	s.savingID = id
	s.saveError = ""
	s.mu.Unlock()

	var rows []idRow
	err := s.store.Update(ctx, categoriesTable, id, map[string]any{
		"title":       cat.Title,
		"description": cat.Description,
		"sort_order":  sortValue(cat.SortOrder),
	}, &rows)

	switch {
	case err != nil:
		s.finishFailure(ctx, err.Error())
		return fmt.Errorf("save category: %w", err)
	case len(rows) == 0:
		s.finishFailure(ctx, MsgNoRowsUpdated)
		return ErrNoRowsUpdated
	default:
		s.finishSuccess(ctx, id)
		return nil
	}
}

// SaveItem persists the working copy of an item, including its category
// foreign key. Same contract as SaveCategory.
func (s *EditSession) SaveItem(ctx context.Context, categoryID, itemID string) error {
	s.mu.Lock()
	item, ok := s.lookupItem(categoryID, itemID)
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if !s.connected() {
		s.saveError = MsgNotConnected
		s.mu.Unlock()
		return ErrNotConnected
	}
	s.savingID = itemID
	s.saveError = ""
	s.mu.Unlock()

	var rows []idRow
	err := s.store.Update(ctx, itemsTable, itemID, map[string]any{
		"title":       item.Title,
		"description": item.Description,
		"price":       item.Price,
		"duration":    item.Duration,
		"sort_order":  sortValue(item.SortOrder),
		"category_id": categoryID,
	}, &rows)

	switch {
	case err != nil:
		s.finishFailure(ctx, err.Error())
		return fmt.Errorf("save item: %w", err)
	case len(rows) == 0:
		s.finishFailure(ctx, MsgNoRowsUpdated)
		return ErrNoRowsUpdated
	default:
		s.finishSuccess(ctx, itemID)
		return nil
	}
}

// AddCategory inserts a placeholder category appended to the end of the menu
// (sort order = current category count). On success the new category becomes
// the active one. Failures surface the store's message without a reload.
func (s *EditSession) AddCategory(ctx context.Context) (string, error) {
	s.mu.Lock()
	if !s.connected() {
		s.saveError = MsgNotConnected
		s.mu.Unlock()
		return "", ErrNotConnected
	}
	s.savingID = savingNewCategory
	s.saveError = ""
	count := len(s.categories)
	s.mu.Unlock()

	var rows []idRow
	err := s.store.Insert(ctx, categoriesTable, map[string]any{
		"title":       "New Category",
		"description": "Describe this category",
		"sort_order":  count,
	}, &rows)
	if err != nil {
		s.mu.Lock()
		s.savingID = ""
		s.saveError = err.Error()
		s.mu.Unlock()
		return "", fmt.Errorf("add category: %w", err)
	}

	s.Apply(s.repo.Reload(ctx))

	s.mu.Lock()
	s.savingID = ""
	var newID string
	if len(rows) > 0 {
		newID = rows[0].ID
		s.activeCategoryID = newID
	}
	s.mu.Unlock()
	return newID, nil
}

// AddItem inserts a placeholder item appended to the end of the target
// category (sort order = that category's current item count). The category
// must already be in the working copy. A reload follows either outcome.
func (s *EditSession) AddItem(ctx context.Context, categoryID string) (string, error) {
	s.mu.Lock()
	cat, ok := s.lookupCategory(categoryID)
	if !ok {
		s.mu.Unlock()
		return "", ErrNotFound
	}
	if !s.connected() {
		s.saveError = MsgNotConnected
		s.mu.Unlock()
		return "", ErrNotConnected
	}
	s.savingID = savingNewItem
	s.saveError = ""
	count := len(cat.Items)
	s.mu.Unlock()

	var rows []idRow
	err := s.store.Insert(ctx, itemsTable, map[string]any{
		"category_id": categoryID,
		"title":       "New Service",
		"description": "Service description",
		"price":       "$0.00",
		"duration":    "30 min",
		"sort_order":  count,
	}, &rows)

	s.Apply(s.repo.Reload(ctx))

	s.mu.Lock()
	s.savingID = ""
	if err != nil {
		s.saveError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		return "", fmt.Errorf("add item: %w", err)
	}
	if len(rows) > 0 {
		return rows[0].ID, nil
	}
	return "", nil
}

// finishFailure resynchronizes the working copy with the store, then records
// the failure and clears the in-flight marker.
func (s *EditSession) finishFailure(ctx context.Context, msg string) {
	s.Apply(s.repo.Reload(ctx))
	s.mu.Lock()
	s.savingID = ""
	s.saveError = msg
	s.mu.Unlock()
}

// finishSuccess resynchronizes the working copy, marks the row as just saved,
// and schedules the flag to clear after the display window.
func (s *EditSession) finishSuccess(ctx context.Context, id string) {
	s.Apply(s.repo.Reload(ctx))
	s.mu.Lock()
	s.savingID = ""
	s.justSavedID = id
	if s.savedTimer != nil {
		s.savedTimer.Stop()
	}
	s.savedTimer = time.AfterFunc(s.savedWindow, func() {
		s.mu.Lock()
		if s.justSavedID == id {
			s.justSavedID = ""
		}
		s.mu.Unlock()
	})
	s.mu.Unlock()
}

// connected reports whether mutating operations may contact the store.
// Callers must hold s.mu.
func (s *EditSession) connected() bool {
	return s.store != nil && s.store.Configured() && !s.repo.UsingFallback()
}

// lookupCategory returns a copy. Callers must hold s.mu.
func (s *EditSession) lookupCategory(id string) (model.ServiceCategory, bool) {
	for _, c := range s.categories {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return model.ServiceCategory{}, false
}

// lookupItem returns a copy. Callers must hold s.mu.
func (s *EditSession) lookupItem(categoryID, itemID string) (model.ServiceItem, bool) {
	for _, c := range s.categories {
		if c.ID != categoryID {
			continue
		}
		for _, it := range c.Items {
			if it.ID == itemID {
				return it, true
			}
		}
	}
	return model.ServiceItem{}, false
}

func sortValue(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
