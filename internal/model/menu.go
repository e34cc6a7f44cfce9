package model

// ServiceItem is a single bookable service on the menu. Price and duration are
// display strings, not parsed values.
type ServiceItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Duration    string `json:"duration"`
	SortOrder   *int   `json:"sort_order"`
}

// ServiceCategory groups menu items. Items are held in display order.
type ServiceCategory struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	SortOrder   *int          `json:"sort_order"`
	Items       []ServiceItem `json:"items"`
}

// Clone returns a deep copy of the category, including its items.
func (c ServiceCategory) Clone() ServiceCategory {
	out := c
	if c.SortOrder != nil {
		v := *c.SortOrder
		out.SortOrder = &v
	}
	out.Items = make([]ServiceItem, len(c.Items))
	for i, item := range c.Items {
		out.Items[i] = item
		if item.SortOrder != nil {
			v := *item.SortOrder
			out.Items[i].SortOrder = &v
		}
	}
	return out
}

// CloneCategories deep-copies a category list.
func CloneCategories(categories []ServiceCategory) []ServiceCategory {
	out := make([]ServiceCategory, len(categories))
	for i, c := range categories {
		out[i] = c.Clone()
	}
	return out
}
