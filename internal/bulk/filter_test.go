package bulk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterByPaths_IncludeOnly(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://docs.x.com/a",
		"https://docs.x.com/b",
		"https://docs.x.com/intro",
	}

	got := FilterByPaths(urls, []string{"/a"}, nil)
	require.Equal(t, []string{"https://docs.x.com/a"}, got)
}

func TestFilterByPaths_ExcludeOnly(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://x.com/docs/start",
		"https://x.com/blog/post",
		"https://x.com/docs/api",
	}

	got := FilterByPaths(urls, nil, []string{"/docs"})
	require.Equal(t, []string{"https://x.com/blog/post"}, got)
}

func TestFilterByPaths_IncludeAndExcludeAreIndependent(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://x.com/docs/start",
		"https://x.com/docs/internal/secret",
		"https://x.com/blog/post",
	}

	// Survives iff it matches an include prefix AND no exclude prefix.
	got := FilterByPaths(urls, []string{"/docs"}, []string{"/docs/internal"})
	require.Equal(t, []string{"https://x.com/docs/start"}, got)
}

func TestFilterByPaths_NoFiltersKeepsAll(t *testing.T) {
	t.Parallel()

	urls := []string{"https://x.com/a", "https://x.com/b"}
	require.Equal(t, urls, FilterByPaths(urls, nil, nil))
}

func TestRankFirstSegments(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://x.com/blog/one",
		"https://x.com/docs/a",
		"https://x.com/docs/b",
		"https://x.com/docs/c",
		"https://x.com/blog/two",
		"https://x.com/about",
		"https://x.com/",
	}

	ranked := RankFirstSegments(urls)
	require.Equal(t, []SegmentCount{
		{Segment: "/docs", Count: 3},
		{Segment: "/blog", Count: 2},
		{Segment: "/about", Count: 1},
	}, ranked)
}

func TestRankFirstSegments_TiesKeepDiscoveryOrder(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://x.com/zeta/a",
		"https://x.com/alpha/a",
	}

	ranked := RankFirstSegments(urls)
	require.Equal(t, "/zeta", ranked[0].Segment)
	require.Equal(t, "/alpha", ranked[1].Segment)
}
