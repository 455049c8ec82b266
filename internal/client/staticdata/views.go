package staticdata

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gilab/labsite/internal/client/models"
)

// Derived views. None of these modify their input.

// BySortOrder orders publications by their manual sort key.
func BySortOrder(a, b models.Publication) int {
	return cmp.Compare(a.SortOrder(), b.SortOrder())
}

// SortPublications orders by descending year. With a secondary comparator,
// ties are broken by it and then by title; without one the sort is stable
// on year alone.
func SortPublications(pubs []models.Publication, secondary func(a, b models.Publication) int) []models.Publication {
	out := slices.Clone(pubs)
	slices.SortStableFunc(out, func(a, b models.Publication) int {
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		if secondary == nil {
			return 0
		}
		if c := secondary(a, b); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
	return out
}

// Recent returns at most limit publications by descending year.
func Recent(pubs []models.Publication, limit int) []models.Publication {
	sorted := SortPublications(pubs, nil)
	if limit >= 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}

type YearGroup struct {
	Year         models.Year
	Publications []models.Publication
}

// GroupByYear buckets publications by year, newest year first, each bucket
// ordered by sort key and then title.
func GroupByYear(pubs []models.Publication) []YearGroup {
	var groups []YearGroup
	for _, p := range SortPublications(pubs, BySortOrder) {
		if n := len(groups); n > 0 && groups[n-1].Year == p.Year {
			groups[n-1].Publications = append(groups[n-1].Publications, p)
			continue
		}
		groups = append(groups, YearGroup{Year: p.Year, Publications: []models.Publication{p}})
	}
	return groups
}

// SortNews orders by descending publication time, stable for equal times.
func SortNews(items []models.News) []models.News {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b models.News) int {
		return b.PublishedAt.Compare(a.PublishedAt.Time)
	})
	return out
}

func FindNews(items []models.News, id string) *models.News {
	for i := range items {
		if items[i].ID == id {
			n := items[i]
			return &n
		}
	}
	return nil
}
