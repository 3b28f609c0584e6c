package analytics

import "testing"

func TestAggregatorRecordSearchEvent(t *testing.T) {
	agg := NewAggregator(nil)
	agg.recordSearchEvent(SearchEvent{Query: "alpha", TotalHits: 3, LatencyMs: 10, CacheHit: true})
	agg.recordSearchEvent(SearchEvent{Query: "alpha", TotalHits: 0, LatencyMs: 20, CacheHit: false})
	agg.recordSearchEvent(SearchEvent{Query: "beta", TotalHits: 5, LatencyMs: 30, CacheHit: false})

	stats := agg.Stats()
	if stats.TotalSearches != 3 {
		t.Errorf("TotalSearches = %d, want 3", stats.TotalSearches)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("CacheHits/Misses = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if len(stats.TopQueries) != 2 {
		t.Errorf("len(TopQueries) = %d, want 2", len(stats.TopQueries))
	}
	if stats.TopQueries[0].Query != "alpha" || stats.TopQueries[0].Count != 2 {
		t.Errorf("TopQueries[0] = %+v, want alpha:2", stats.TopQueries[0])
	}
}

func TestAggregatorRecordBuildEvent(t *testing.T) {
	agg := NewAggregator(nil)
	agg.recordBuildEvent(BuildEvent{BuildID: "b1", Success: true})
	agg.recordBuildEvent(BuildEvent{BuildID: "b2", Success: false})

	if got := agg.Stats().TotalBuilds; got != 2 {
		t.Errorf("TotalBuilds = %d, want 2", got)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(sorted, 50); got != 6 {
		t.Errorf("p50 = %d, want 6", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile(nil) = %d, want 0", got)
	}
}
