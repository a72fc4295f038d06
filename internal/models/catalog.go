package models

import "strings"

// PanelCatalog is the static per-panel configuration mapping a panel name to
// the ordered list of canonical title product names of its lot groups. Loaded
// once at startup and never mutated afterwards.
type PanelCatalog struct {
	titlesByPanel map[string][]string
}

// NewPanelCatalog builds a catalog from panel name to title-name lists. The
// input map is copied so later mutation by the caller cannot leak in.
func NewPanelCatalog(titles map[string][]string) PanelCatalog {
	copied := make(map[string][]string, len(titles))
	for panel, names := range titles {
		copied[panel] = append([]string(nil), names...)
	}
	return PanelCatalog{titlesByPanel: copied}
}

// Titles returns the ordered title product names configured for a panel.
func (c PanelCatalog) Titles(panel string) []string {
	return c.titlesByPanel[panel]
}

// Panels returns the catalog's panel names, in no particular order.
func (c PanelCatalog) Panels() []string {
	panels := make([]string, 0, len(c.titlesByPanel))
	for panel := range c.titlesByPanel {
		panels = append(panels, panel)
	}
	return panels
}

// IsTitleName reports whether name matches a configured title for the panel.
// Matching is case-insensitive and ignores surrounding whitespace.
func (c PanelCatalog) IsTitleName(panel, name string) bool {
	needle := CanonicalName(name)
	for _, title := range c.titlesByPanel[panel] {
		if CanonicalName(title) == needle {
			return true
		}
	}
	return false
}

// CanonicalName normalizes a product name for title comparison.
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
