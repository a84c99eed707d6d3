// Package projector derives ordered views from collection snapshots.
// Projection is a pure function of (snapshot, pipeline): the same inputs
// always produce the same output, which keeps the live feed testable even
// though its timing is not deterministic.
package projector

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"consumerwise/internal/model"
)

type SortMode string

const (
	SortNone           SortMode = ""
	SortNutrientHigh   SortMode = "high-nutrient"
	SortNutrientLow    SortMode = "low-nutrient"
	SortPackagePlastic SortMode = "package-plastic"
	SortPackagePaper   SortMode = "package-paper"
)

type Pipeline struct {
	Search   string
	Category string
	Company  string
	Sort     SortMode
	Limit    int
}

// ProjectItems applies the pipeline stages in a fixed order: company filter,
// name search, category filter, packaging filter when the sort mode requests
// one, stable score sort, truncation. The input slice is never mutated.
func ProjectItems(snapshot []model.Item, p Pipeline) []model.Item {
	out := make([]model.Item, 0, len(snapshot))
	for _, i := range snapshot {
		if p.Company != "" && i.CompanyName != p.Company {
			continue
		}
		if p.Search != "" && !strings.Contains(strings.ToLower(i.ProductName), strings.ToLower(p.Search)) {
			continue
		}
		if p.Category != "" && i.Category != p.Category {
			continue
		}
		switch p.Sort {
		case SortPackagePlastic:
			if !strings.EqualFold(i.Packaging, model.PackagingPlastic) {
				continue
			}
		case SortPackagePaper:
			if !strings.EqualFold(i.Packaging, model.PackagingPaper) {
				continue
			}
		}
		out = append(out, i)
	}

	switch p.Sort {
	case SortNutrientHigh:
		sort.SliceStable(out, func(a, b int) bool {
			return scoreValue(out[a].NutrientScore) > scoreValue(out[b].NutrientScore)
		})
	case SortNutrientLow:
		sort.SliceStable(out, func(a, b int) bool {
			return scoreValue(out[a].NutrientScore) < scoreValue(out[b].NutrientScore)
		})
	}

	return truncate(out, p.Limit)
}

// ProjectStocks filters a retailer's stock list by company, category and
// product-name search.
func ProjectStocks(snapshot []model.StockEntry, p Pipeline) []model.StockEntry {
	out := make([]model.StockEntry, 0, len(snapshot))
	for _, s := range snapshot {
		if p.Company != "" && s.CompanyName != p.Company {
			continue
		}
		if p.Search != "" && !strings.Contains(strings.ToLower(s.ProductName), strings.ToLower(p.Search)) {
			continue
		}
		if p.Category != "" && s.ProductCategories != p.Category {
			continue
		}
		out = append(out, s)
	}
	return truncate(out, p.Limit)
}

type MessagePipeline struct {
	Search string
	From   time.Time
	To     time.Time
}

// ProjectMessages filters notifications by free text across product name,
// company name and message body, restricts to the date range when both ends
// are set, and orders newest first.
func ProjectMessages(snapshot []model.Message, p MessagePipeline) []model.Message {
	search := strings.ToLower(p.Search)
	out := make([]model.Message, 0, len(snapshot))
	for _, m := range snapshot {
		if search != "" &&
			!strings.Contains(strings.ToLower(m.ProductName), search) &&
			!strings.Contains(strings.ToLower(m.CompanyName), search) &&
			!strings.Contains(strings.ToLower(m.Message), search) {
			continue
		}
		if !p.From.IsZero() && !p.To.IsZero() {
			t, err := time.Parse(time.RFC3339, m.CreatedAt)
			if err != nil || t.Before(p.From) || t.After(p.To) {
				continue
			}
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].CreatedAt > out[b].CreatedAt
	})
	return out
}

// scoreValue treats non-numeric scores as 0 so a malformed document cannot
// break ordering.
func scoreValue(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// truncate keeps the first n elements without reordering; n <= 0 means no
// truncation.
func truncate[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
