// Package render decides how each page type is rendered and resolves
// page data the way a page runtime's pre-render hooks would.
package render

// Strategy is the pre-render plan for a page type.
type Strategy string

const (
	// StrategyStaticWithFallback pre-renders known ids ahead of time;
	// unknown ids are built on first request and cached after.
	StrategyStaticWithFallback Strategy = "static_with_fallback"

	// StrategyServerSide resolves data at request time, against the
	// live session where the page needs one.
	StrategyServerSide Strategy = "server_side"
)

// Page identifies a page type.
type Page string

const (
	PageIndex      Page = "index"       // public feed
	PageOwnedHomes Page = "homes"       // caller's listings
	PageHomeDetail Page = "home_detail" // single listing
	PageHomeEdit   Page = "home_edit"   // edit form
	PageCreate     Page = "create"      // new listing form
)

// PlanFor returns the rendering strategy for a page type. Only the
// detail page may be served from a static render: everything else is
// either per-viewer or an auth gate, and a cached copy would leak
// across users or go stale.
func PlanFor(page Page) Strategy {
	switch page {
	case PageHomeDetail:
		return StrategyStaticWithFallback
	default:
		return StrategyServerSide
	}
}

// Redirect is a page resolution that bounces the viewer elsewhere.
type Redirect struct {
	Destination string `json:"destination"`
	Permanent   bool   `json:"permanent"`
}

// Result is the outcome of resolving a page: either props for the
// page component or a redirect, never both.
type Result struct {
	Props    any       `json:"props,omitempty"`
	Redirect *Redirect `json:"redirect,omitempty"`

	// Fallback marks a detail render that was built on demand rather
	// than served from the prerender cache.
	Fallback bool `json:"-"`
}
