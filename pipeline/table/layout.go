// Package table resolves catalog assets: scripted objects whose tree is a
// table of named references to sprites and textures. Each resolved target
// is exported under the name the catalog gives it.
package table

import (
	"fmt"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
	"github.com/1siamBot/asset-exporter/pipeline/value"
)

// Layout is one of the two catalog layouts seen across engine versions.
type Layout int

const (
	// LayoutCurrent stores Entries and Resources.
	LayoutCurrent Layout = iota
	// LayoutLegacy stores m_assetTable and _resources.
	LayoutLegacy
)

func (l Layout) String() string {
	if l == LayoutLegacy {
		return "legacy"
	}
	return "current"
}

const (
	legacyEntriesKey   = "m_assetTable"
	legacyResourcesKey = "_resources"
	entriesKey         = "Entries"
	resourcesKey       = "Resources"

	identifierKey     = "m_identifier"
	originalSpriteKey = "m_originalSprite"
	pathIDKey         = "m_PathID"
	editorGUIDKey     = "_editorGuid"
)

// catalog is the layout-independent view of a catalog tree. resources is
// index-aligned with entries when hasResources is set.
type catalog struct {
	layout       Layout
	entries      []value.Value
	resources    []value.Value
	hasResources bool
}

// normalize detects the layout by the legacy-only key and reads both
// sequences under that layout's names. A missing entries sequence yields
// an empty catalog.
func normalize(tree value.Value) (catalog, error) {
	m, err := tree.AsMap()
	if err != nil {
		return catalog{}, fmt.Errorf("catalog tree: %w: %w", asset.ErrMalformed, err)
	}

	c := catalog{layout: LayoutCurrent}
	ek, rk := entriesKey, resourcesKey
	if m.Has(legacyEntriesKey) {
		c.layout = LayoutLegacy
		ek, rk = legacyEntriesKey, legacyResourcesKey
	}

	if v, ok := m.Lookup(ek); ok {
		if entries, err := v.AsSeq(); err == nil {
			c.entries = entries
		}
	}
	if v, ok := m.Lookup(rk); ok {
		if resources, err := v.AsSeq(); err == nil {
			c.resources = resources
			c.hasResources = true
		}
	}
	return c, nil
}
