package bulk

import (
	"net/url"
	"sort"
	"strings"
)

// FilterByPaths keeps a URL iff (include is empty OR its path starts with
// some include prefix) AND (exclude is empty OR its path starts with no
// exclude prefix). The two sets are independent.
func FilterByPaths(urls, include, exclude []string) []string {
	if len(include) == 0 && len(exclude) == 0 {
		return urls
	}

	kept := make([]string, 0, len(urls))
	for _, raw := range urls {
		path := urlPath(raw)
		if len(include) > 0 && !hasAnyPrefix(path, include) {
			continue
		}
		if len(exclude) > 0 && hasAnyPrefix(path, exclude) {
			continue
		}
		kept = append(kept, raw)
	}
	return kept
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// SegmentCount pairs a first path segment (with leading slash, usable
// directly as an include prefix) with how many discovered URLs start there.
type SegmentCount struct {
	Segment string
	Count   int
}

// RankFirstSegments counts each URL's first path segment across the
// discovered set and ranks descending by count. Ties keep discovery order.
func RankFirstSegments(urls []string) []SegmentCount {
	counts := make(map[string]int)
	var order []string

	for _, raw := range urls {
		path := strings.TrimPrefix(urlPath(raw), "/")
		if path == "" {
			continue
		}
		seg := "/" + strings.SplitN(path, "/", 2)[0]
		if _, seen := counts[seg]; !seen {
			order = append(order, seg)
		}
		counts[seg]++
	}

	ranked := make([]SegmentCount, 0, len(order))
	for _, seg := range order {
		ranked = append(ranked, SegmentCount{Segment: seg, Count: counts[seg]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	return ranked
}
