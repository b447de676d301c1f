package content

import "sort"

// multiSourceReasoning is the only question type whose passage renders as
// switchable tabs.
const multiSourceReasoning = "multi-source-reasoning"

// Source is a named grouping of blocks sharing a tab index.
type Source struct {
	Index  int     `json:"index"`
	Blocks []Block `json:"blocks"`
}

// Group partitions blocks into sources by tab index. Within a source the
// insertion order of the input is preserved; sources are returned in ascending
// index order. A nil or empty input yields an empty slice, never an error.
func Group(blocks []Block) []Source {
	if len(blocks) == 0 {
		return []Source{}
	}

	byIndex := make(map[int][]Block)
	indices := make([]int, 0)
	for _, b := range blocks {
		if _, seen := byIndex[b.TabIndex]; !seen {
			indices = append(indices, b.TabIndex)
		}
		byIndex[b.TabIndex] = append(byIndex[b.TabIndex], b)
	}
	sort.Ints(indices)

	sources := make([]Source, 0, len(indices))
	for _, idx := range indices {
		sources = append(sources, Source{Index: idx, Blocks: byIndex[idx]})
	}
	return sources
}

// IsTabbedDisplay reports whether a tab selector should be shown. Only
// multi-source-reasoning questions with more than one source are tabbed; a
// single source never shows tabs regardless of type.
func IsTabbedDisplay(questionType string, sourceCount int) bool {
	return questionType == multiSourceReasoning && sourceCount > 1
}
