// Package search provides approximate text matching over a snapshot of
// tasks, for live-search style interfaces. A task matches when any of
// its indexed fields is within the edit-distance threshold of the
// query, regardless of where in the field the match sits.
package search

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/chandirag/cli-task-manager/pkg/models"
)

const (
	// Threshold is the most permissive normalized distance still counted
	// as a match: 0 is an exact match, 1 shares nothing with the query.
	Threshold = 0.4

	// MinQueryLength gates matching. Shorter queries return the full
	// snapshot so a single keystroke does not over-filter a live search.
	MinQueryLength = 2
)

type field struct {
	text   string
	weight float64
}

type entry struct {
	task   *models.Task
	fields []field
}

// Index is a point-in-time snapshot of tasks prepared for matching.
// It is never updated in place; a new search session builds a new Index
// from a fresh snapshot.
type Index struct {
	entries []entry
}

type Result struct {
	Task *models.Task

	// Score is the best weighted field score for the query, 0 = exact.
	// Results come back in snapshot order; callers wanting relevance
	// order sort on Score themselves.
	Score float64
}

// NewIndex snapshots the given tasks. Name carries twice the weight of
// category and priority.
func NewIndex(tasks []*models.Task) *Index {
	ix := &Index{entries: make([]entry, 0, len(tasks))}
	for _, t := range tasks {
		ix.entries = append(ix.entries, entry{
			task: t,
			fields: []field{
				{text: strings.ToLower(t.Name), weight: 2},
				{text: strings.ToLower(t.Category), weight: 1},
				{text: strings.ToLower(string(t.Priority)), weight: 1},
			},
		})
	}
	return ix
}

// Search returns the tasks matching the query. Queries shorter than
// MinQueryLength (including the empty query) return the full snapshot.
func (ix *Index) Search(query string) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < MinQueryLength {
		all := make([]Result, 0, len(ix.entries))
		for _, e := range ix.entries {
			all = append(all, Result{Task: e.task})
		}
		return all
	}

	results := []Result{}
	for _, e := range ix.entries {
		matched := false
		best := 1.0
		for _, f := range e.fields {
			score := fieldScore(q, f.text)
			if score <= Threshold {
				matched = true
			}
			if weighted := score / f.weight; weighted < best {
				best = weighted
			}
		}
		if matched {
			results = append(results, Result{Task: e.task, Score: best})
		}
	}
	return results
}

// fieldScore is the normalized edit distance between the query and the
// closest query-sized window of the field, so position within the field
// does not affect the score. Distance is optimal string alignment: a
// transposed pair of characters costs one edit, which is what makes
// common typos land inside the threshold.
func fieldScore(query, text string) float64 {
	if text == "" {
		return 1
	}
	if strings.Contains(text, query) {
		return 0
	}

	q := []rune(query)
	tr := []rune(text)
	if len(tr) <= len(q) {
		return normalize(matchr.OSA(query, text), len(q))
	}

	best := 1.0
	for i := 0; i+len(q) <= len(tr); i++ {
		window := string(tr[i : i+len(q)])
		if s := normalize(matchr.OSA(query, window), len(q)); s < best {
			best = s
		}
	}
	return best
}

func normalize(distance, queryLen int) float64 {
	s := float64(distance) / float64(queryLen)
	if s > 1 {
		return 1
	}
	return s
}
