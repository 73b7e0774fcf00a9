package market

import (
	"context"
	"sort"
	"strings"
)

// CatalogQuery mirrors the storefront controls: free-text search over
// name+species+tags, type filter, price bounds, and a sort key.
type CatalogQuery struct {
	Text     string
	Type     string
	MinPrice float64
	MaxPrice float64
	Sort     string // name (default) | price | stock
}

func (s *Service) SearchPlants(ctx context.Context, q CatalogQuery) []Plant {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	res := []Plant{}
	for _, p := range s.Plants.List(ctx) {
		if needle != "" {
			hay := strings.ToLower(p.Name + " " + p.Species + " " + strings.Join(p.Tags, " "))
			if !strings.Contains(hay, needle) {
				continue
			}
		}
		if q.Type != "" && q.Type != "all" && p.Type != q.Type {
			continue
		}
		if q.MinPrice > 0 && p.Price < q.MinPrice {
			continue
		}
		if q.MaxPrice > 0 && p.Price > q.MaxPrice {
			continue
		}
		res = append(res, p)
	}

	switch q.Sort {
	case "price":
		sort.SliceStable(res, func(i, j int) bool { return res[i].Price < res[j].Price })
	case "stock":
		sort.SliceStable(res, func(i, j int) bool { return res[i].Stock > res[j].Stock })
	default:
		sort.SliceStable(res, func(i, j int) bool {
			return strings.ToLower(res[i].Name) < strings.ToLower(res[j].Name)
		})
	}
	return res
}

// PlantTypes lists the distinct type tags present in the catalog, for the
// storefront filter dropdown.
func (s *Service) PlantTypes(ctx context.Context) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range s.Plants.List(ctx) {
		t := p.Type
		if t == "" {
			t = "other"
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
