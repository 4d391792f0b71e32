package dom

// Selectors names the parts of a paginated listing.
type Selectors struct {
	// Anchor matches the "load more" / next-page link.
	Anchor string

	// Listing matches the block enclosing one paginated listing.
	Listing string

	// Container matches the item container inside a listing. The same
	// selector locates the fragment inside fetched pages.
	Container string

	// Loader matches the infinite-scroll indicator. Its presence enables
	// infinite scroll for the page.
	Loader string

	// LoadingClass is toggled on the loader while a page is loading.
	LoadingClass string

	// LoadingTextAttr holds the anchor text shown while a clicked load runs.
	LoadingTextAttr string
}

// DefaultSelectors returns the selectors of the WordPress query loop block
// with the load-more extension.
func DefaultSelectors() Selectors {
	return Selectors{
		Anchor:          ".wp-load-more__button",
		Listing:         ".wp-block-query",
		Container:       ".wp-block-post-template",
		Loader:          ".wp-load-more__infinite-scroll",
		LoadingClass:    "loading",
		LoadingTextAttr: "data-loading-text",
	}
}

// withDefaults fills empty fields from DefaultSelectors.
func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors()
	if s.Anchor == "" {
		s.Anchor = d.Anchor
	}
	if s.Listing == "" {
		s.Listing = d.Listing
	}
	if s.Container == "" {
		s.Container = d.Container
	}
	if s.Loader == "" {
		s.Loader = d.Loader
	}
	if s.LoadingClass == "" {
		s.LoadingClass = d.LoadingClass
	}
	if s.LoadingTextAttr == "" {
		s.LoadingTextAttr = d.LoadingTextAttr
	}
	return s
}
