package books

import (
	"context"
	"sort"
	"strings"
)

// PageMatch is a page found by SearchPages together with where it lives and
// how many query terms it matched.
type PageMatch struct {
	BookID       string `json:"bookId"`
	BookTitle    string `json:"bookTitle"`
	ChapterID    string `json:"chapterId"`
	ChapterTitle string `json:"chapterTitle"`
	Page         Page   `json:"page"`
	MatchCount   int    `json:"matchCount"`
}

// SearchPages finds pages whose title or content contains any of the
// whitespace-separated terms in query, case-insensitively. Results are ranked
// by the number of distinct terms matched, then by page date, newest first.
func (r *Repository) SearchPages(ctx context.Context, query string) ([]PageMatch, error) {
	terms := uniqueTerms(query)
	if len(terms) == 0 {
		return []PageMatch{}, nil
	}

	c, err := r.GetAllBooks(ctx)
	if err != nil {
		return nil, err
	}

	results := []PageMatch{}
	for _, id := range c.SortedIDs() {
		book := c[id]
		for _, ch := range book.Chapters {
			for _, p := range ch.Pages {
				text := strings.ToLower(p.Title + "\n" + p.Content)
				n := 0
				for _, t := range terms {
					if strings.Contains(text, t) {
						n++
					}
				}
				if n == 0 {
					continue
				}
				results = append(results, PageMatch{
					BookID:       book.ID,
					BookTitle:    book.Title,
					ChapterID:    ch.ID,
					ChapterTitle: ch.Title,
					Page:         p,
					MatchCount:   n,
				})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchCount != results[j].MatchCount {
			return results[i].MatchCount > results[j].MatchCount
		}
		return results[i].Page.Date > results[j].Page.Date
	})
	return results, nil
}

func uniqueTerms(query string) []string {
	seen := map[string]bool{}
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(query)) {
		if !seen[f] {
			seen[f] = true
			terms = append(terms, f)
		}
	}
	return terms
}
