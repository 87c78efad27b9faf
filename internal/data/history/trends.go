package history

import "sort"

// PathTrend compares the two most recent runs of one file.
type PathTrend struct {
	Path           string
	Runs           int
	LastMismatches int
	DeltaMismatch  int
	LastStatus     string
}

// BuildTrends groups runs (oldest first) by path, sorted by path.
func BuildTrends(runs []Run) []PathTrend {
	byPath := make(map[string]*PathTrend)
	previous := make(map[string]int)
	for _, run := range runs {
		trend, ok := byPath[run.Path]
		if !ok {
			trend = &PathTrend{Path: run.Path}
			byPath[run.Path] = trend
		}
		if trend.Runs > 0 {
			previous[run.Path] = trend.LastMismatches
		}
		trend.Runs++
		trend.LastMismatches = run.Mismatches
		trend.LastStatus = run.Status
		if trend.Runs > 1 {
			trend.DeltaMismatch = run.Mismatches - previous[run.Path]
		}
	}

	out := make([]PathTrend, 0, len(byPath))
	for _, trend := range byPath {
		out = append(out, *trend)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
