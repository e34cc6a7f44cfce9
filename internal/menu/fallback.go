package menu

import "github.com/gloworganic/site/internal/model"

func intp(v int) *int { return &v }

// fallbackCategories is the bundled menu shown whenever the record store is
// unconfigured or failing. It is never merged with remote data.
var fallbackCategories = []model.ServiceCategory{
	{
		ID:          "facials",
		Title:       "Organic Facials",
		Description: "Plant-based treatments tailored to your skin, from deep cleansing to restorative hydration.",
		SortOrder:   intp(0),
		Items: []model.ServiceItem{
			{
				ID:          "facials-signature",
				Title:       "Signature Glow Facial",
				Description: "Our classic facial with botanical cleansing, gentle exfoliation, and a hydrating sage mask.",
				Price:       "$95",
				Duration:    "60 min",
				SortOrder:   intp(0),
			},
			{
				ID:          "facials-deep-clean",
				Title:       "Deep Clean Facial",
				Description: "Purifying clay and steam extraction for congested skin, finished with a calming balm.",
				Price:       "$80",
				Duration:    "45 min",
				SortOrder:   intp(1),
			},
			{
				ID:          "facials-renewal",
				Title:       "Herbal Renewal Ritual",
				Description: "Layered herbal infusions and facial massage to brighten tired skin before an event.",
				Price:       "$120",
				Duration:    "75 min",
				SortOrder:   intp(2),
			},
		},
	},
	{
		ID:          "massage",
		Title:       "Massage & Body",
		Description: "Unhurried bodywork with warmed organic oils, pressure tuned to your day.",
		SortOrder:   intp(1),
		Items: []model.ServiceItem{
			{
				ID:          "massage-relaxation",
				Title:       "Relaxation Massage",
				Description: "Full-body Swedish massage with lavender and chamomile oil.",
				Price:       "$90",
				Duration:    "60 min",
				SortOrder:   intp(0),
			},
			{
				ID:          "massage-deep-tissue",
				Title:       "Deep Tissue Massage",
				Description: "Focused work on stubborn tension through the back, neck, and shoulders.",
				Price:       "$110",
				Duration:    "60 min",
				SortOrder:   intp(1),
			},
			{
				ID:          "massage-body-polish",
				Title:       "Sea Salt Body Polish",
				Description: "A gentle head-to-toe exfoliation followed by whipped shea butter.",
				Price:       "$85",
				Duration:    "45 min",
				SortOrder:   intp(2),
			},
		},
	},
	{
		ID:          "rituals",
		Title:       "Beauty Rituals",
		Description: "Finishing touches for brows, lashes, and hands, all with clean formulas.",
		SortOrder:   intp(2),
		Items: []model.ServiceItem{
			{
				ID:          "rituals-brow",
				Title:       "Brow Shaping & Tint",
				Description: "Precision shaping with a vegetable-dye tint matched to your coloring.",
				Price:       "$45",
				Duration:    "30 min",
				SortOrder:   intp(0),
			},
			{
				ID:          "rituals-manicure",
				Title:       "Botanical Manicure",
				Description: "Soak, shape, cuticle care, and polish with ten-free lacquer.",
				Price:       "$55",
				Duration:    "45 min",
				SortOrder:   intp(1),
			},
		},
	},
}

// FallbackCategories returns a fresh deep copy of the bundled menu so callers
// can never mutate the canonical fallback data.
func FallbackCategories() []model.ServiceCategory {
	return model.CloneCategories(fallbackCategories)
}
