package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/gloworganic/site/internal/recordstore"
)

// fakeStore implements Store in memory. Rows are held as generic maps and
// round-tripped through JSON so decoding matches the real wire behavior.
type fakeStore struct {
	mu         sync.Mutex
	configured bool
	tables     map[string][]map[string]any

	selectErr map[string]error
	updateErr error
	insertErr error
	denyWrite bool // update matches nothing, like a silent authorization denial

	selectCalls map[string]int
	updateCalls int
	insertCalls int
	nextID      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		configured:  true,
		tables:      map[string][]map[string]any{},
		selectErr:   map[string]error{},
		selectCalls: map[string]int{},
	}
}

func (f *fakeStore) addCategory(id, title string, sortOrder any) {
	f.tables[categoriesTable] = append(f.tables[categoriesTable], map[string]any{
		"id": id, "title": title, "description": title + " desc", "sort_order": sortOrder,
	})
}

func (f *fakeStore) addItem(id, categoryID, title, price, duration string, sortOrder any) {
	f.tables[itemsTable] = append(f.tables[itemsTable], map[string]any{
		"id": id, "category_id": categoryID, "title": title,
		"description": title + " desc", "price": price, "duration": duration,
		"sort_order": sortOrder,
	})
}

func (f *fakeStore) Configured() bool { return f.configured }

func (f *fakeStore) Select(_ context.Context, table, _ string, order recordstore.Order, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectCalls[table]++
	if err := f.selectErr[table]; err != nil {
		return err
	}

	rows := make([]map[string]any, len(f.tables[table]))
	copy(rows, f.tables[table])
	sortRows(rows, order)
	return decodeInto(rows, dest)
}

func (f *fakeStore) Update(_ context.Context, table, id string, fields map[string]any, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}

	var matched []map[string]any
	if !f.denyWrite {
		for _, row := range f.tables[table] {
			if row["id"] == id {
				for k, v := range fields {
					row[k] = v
				}
				matched = append(matched, map[string]any{"id": id})
			}
		}
	}
	if matched == nil {
		matched = []map[string]any{}
	}
	return decodeInto(matched, dest)
}

func (f *fakeStore) Insert(_ context.Context, table string, fields map[string]any, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}

	f.nextID++
	row := map[string]any{"id": fmt.Sprintf("gen-%d", f.nextID)}
	for k, v := range fields {
		row[k] = v
	}
	f.tables[table] = append(f.tables[table], row)
	return decodeInto([]map[string]any{row}, dest)
}

func sortRows(rows []map[string]any, order recordstore.Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, aOK := toInt(rows[i][order.Column])
		b, bOK := toInt(rows[j][order.Column])
		if aOK != bOK {
			if order.NullsFirst {
				return !aOK
			}
			return aOK
		}
		if !aOK {
			return false
		}
		if order.Descending {
			return a > b
		}
		return a < b
	})
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func decodeInto(rows []map[string]any, dest any) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
