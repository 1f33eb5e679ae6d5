// Package recommend turns the available-listing pool, an optional search
// query and a viewer's session into the listing sets shown on the home page.
package recommend

import (
	"math/rand/v2"
	"strings"

	"github.com/yourorg/roomeasy-api/internal/model"
)

// Set sizes for the home page.
const (
	// FeaturedSize is how many listings are sampled into Featured.
	FeaturedSize = 5
	// RecommendedSize is the target length of Recommended on the history
	// and remembered-location paths.
	RecommendedSize = 5
	// DiscoverySize is how many listings a visitor with no history is shown.
	DiscoverySize = 8
	// SearchFallbackSize caps the suggestions returned for a search with no hits.
	SearchFallbackSize = 12
)

// Source labels which branch produced Result.Recommended.
type Source string

const (
	SourceSearch         Source = "search"
	SourceSearchFallback Source = "search_fallback"
	SourceHistory        Source = "history"
	SourceRemembered     Source = "remembered_location"
	SourceDiscovery      Source = "discovery"
)

// Result holds the listing sets for one home page render. Slices are never
// nil so they encode as empty arrays.
type Result struct {
	Query          string          `json:"query,omitempty"`
	Source         Source          `json:"source"`
	All            []model.Listing `json:"all"`
	Featured       []model.Listing `json:"featured"`
	RecentlyViewed []model.Listing `json:"recently_viewed"`
	Recommended    []model.Listing `json:"recommended"`
}

// Resolve computes the home page sets. A non-blank query selects search mode
// and is remembered on the returned session. listings is never modified.
func Resolve(listings []model.Listing, query string, sess model.ViewerSession, rng *rand.Rand) (Result, model.ViewerSession) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	pool := uniqueByID(listings)

	var res Result
	if q := strings.TrimSpace(query); q != "" {
		sess.RememberedLocation = q
		res = search(pool, q)
	} else {
		res = browse(pool, sess, rng)
	}
	res.All = nonNil(res.All)
	res.Featured = nonNil(res.Featured)
	res.RecentlyViewed = nonNil(res.RecentlyViewed)
	res.Recommended = nonNil(res.Recommended)
	return res, sess
}

func search(pool []model.Listing, q string) Result {
	res := Result{Query: q, Source: SourceSearch}
	res.All = filter(pool, func(l model.Listing) bool {
		return containsFold(l.Address, q) || containsFold(l.Title, q)
	})
	if len(res.All) == 0 {
		res.Source = SourceSearchFallback
		res.Recommended = head(pool, SearchFallbackSize)
	}
	return res
}

func browse(pool []model.Listing, sess model.ViewerSession, rng *rand.Rand) Result {
	res := Result{All: pool}
	res.Featured = sample(pool, FeaturedSize, rng)
	res.RecentlyViewed = recentlyViewed(pool, sess.RecentlyViewed)

	viewed := make(map[int64]struct{}, len(sess.RecentlyViewed))
	for _, id := range sess.RecentlyViewed {
		viewed[id] = struct{}{}
	}

	switch {
	case len(res.RecentlyViewed) > 0:
		res.Source = SourceHistory
		keywords := ExtractLocationKeywords(res.RecentlyViewed[0].Address)
		picks := matchKeywords(pool, keywords, viewed, RecommendedSize)
		res.Recommended = topUp(pool, picks, viewed, RecommendedSize, rng)
	case sess.RememberedLocation != "":
		res.Source = SourceRemembered
		picks := matchKeywords(pool, []string{sess.RememberedLocation}, viewed, RecommendedSize)
		res.Recommended = topUp(pool, picks, viewed, RecommendedSize, rng)
	default:
		res.Source = SourceDiscovery
		res.Recommended = sample(pool, DiscoverySize, rng)
	}
	return res
}

// recentlyViewed keeps the order of ids, dropping ids missing from pool.
func recentlyViewed(pool []model.Listing, ids []int64) []model.Listing {
	byID := make(map[int64]model.Listing, len(pool))
	for _, l := range pool {
		byID[l.ID] = l
	}
	out := make([]model.Listing, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		if l, ok := byID[id]; ok {
			seen[id] = struct{}{}
			out = append(out, l)
		}
	}
	return out
}

// matchKeywords collects unviewed listings whose address contains a keyword.
// Keywords are tried in order, so matches on the more specific area segment
// come before matches on the city.
func matchKeywords(pool []model.Listing, keywords []string, exclude map[int64]struct{}, limit int) []model.Listing {
	var out []model.Listing
	picked := make(map[int64]struct{})
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		for _, l := range pool {
			if len(out) >= limit {
				return out
			}
			if _, skip := exclude[l.ID]; skip {
				continue
			}
			if _, dup := picked[l.ID]; dup {
				continue
			}
			if containsFold(l.Address, kw) {
				picked[l.ID] = struct{}{}
				out = append(out, l)
			}
		}
	}
	return out
}

// topUp fills picks to want with a random sample of listings that are neither
// excluded nor already picked.
func topUp(pool, picks []model.Listing, exclude map[int64]struct{}, want int, rng *rand.Rand) []model.Listing {
	if len(picks) >= want {
		return picks[:want]
	}
	taken := make(map[int64]struct{}, len(exclude)+len(picks))
	for id := range exclude {
		taken[id] = struct{}{}
	}
	for _, l := range picks {
		taken[l.ID] = struct{}{}
	}
	rest := filter(pool, func(l model.Listing) bool {
		_, ok := taken[l.ID]
		return !ok
	})
	return append(picks, sample(rest, want-len(picks), rng)...)
}

// sample draws min(n, len(pool)) listings without replacement. When the
// whole pool is requested it is returned in store order.
func sample(pool []model.Listing, n int, rng *rand.Rand) []model.Listing {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	if n >= len(pool) {
		return append([]model.Listing(nil), pool...)
	}
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	out := make([]model.Listing, 0, n)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out = append(out, pool[idx[i]])
	}
	return out
}

func head(pool []model.Listing, n int) []model.Listing {
	if len(pool) < n {
		n = len(pool)
	}
	return append([]model.Listing(nil), pool[:n]...)
}

func filter(pool []model.Listing, keep func(model.Listing) bool) []model.Listing {
	var out []model.Listing
	for _, l := range pool {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func uniqueByID(listings []model.Listing) []model.Listing {
	seen := make(map[int64]struct{}, len(listings))
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func nonNil(s []model.Listing) []model.Listing {
	if s == nil {
		return []model.Listing{}
	}
	return s
}
