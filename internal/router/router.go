package router

import (
	"strings"

	"github.com/ca-srg/cyberrag/internal/types"
)

// Router picks source regions from lexical hints in a query.
type Router struct {
	regions []types.Region
}

// New returns a Router over regions in the given order.
func New(regions []types.Region) *Router {
	return &Router{regions: regions}
}

// Route returns every region with a hint occurring in the lower-cased query,
// in configured order. A query naming several regions gets all of them.
// When no hint matches, all regions are returned.
func (r *Router) Route(query string) []string {
	q := strings.ToLower(query)
	var matched []string
	for _, region := range r.regions {
		for _, hint := range region.Hints {
			if hint != "" && strings.Contains(q, strings.ToLower(hint)) {
				matched = append(matched, region.Name)
				break
			}
		}
	}
	if len(matched) == 0 {
		return r.All()
	}
	return matched
}

// All returns every region name in configured order.
func (r *Router) All() []string {
	names := make([]string, len(r.regions))
	for i, region := range r.regions {
		names[i] = region.Name
	}
	return names
}

// URLs resolves region names to source URLs, region order first and then URL
// order within a region. Unknown names are skipped and duplicates are kept.
func (r *Router) URLs(names []string) []string {
	var urls []string
	for _, name := range names {
		for _, region := range r.regions {
			if region.Name == name {
				urls = append(urls, region.URLs...)
				break
			}
		}
	}
	return urls
}
