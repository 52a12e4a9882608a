package catalog

import "github.com/jafarshop/storefront/internal/domain"

// Facets are the filter options offered for a listing
type Facets struct {
	Genders         []domain.Gender   `json:"genders"`
	Childcategories []string          `json:"childcategories"`
	Brands          []string          `json:"brands"`
	Colors          []string          `json:"colors"`
	Sizes           []string          `json:"sizes"`
	Materials       []string          `json:"materials"`
	Price           domain.PriceRange `json:"price"`
}

// DeriveFacets collects the distinct option values of products in first-seen order.
// Colors are taken across every variant and sizes across every size entry. The price
// range spans the base prices; an empty input yields [0,0].
func DeriveFacets(products []domain.Product) Facets {
	f := Facets{
		Genders:         []domain.Gender{},
		Childcategories: []string{},
		Brands:          []string{},
		Colors:          []string{},
		Sizes:           []string{},
		Materials:       []string{},
	}

	genders := make(map[domain.Gender]struct{})
	childcategories := newUniq()
	brands := newUniq()
	colors := newUniq()
	sizes := newUniq()
	materials := newUniq()

	for i, p := range products {
		if p.Gender != "" {
			if _, ok := genders[p.Gender]; !ok {
				genders[p.Gender] = struct{}{}
				f.Genders = append(f.Genders, p.Gender)
			}
		}
		f.Childcategories = childcategories.add(f.Childcategories, p.Childcategory)
		f.Brands = brands.add(f.Brands, p.Brand)
		for _, m := range p.Materials {
			f.Materials = materials.add(f.Materials, m)
		}
		for _, v := range p.Variants {
			f.Colors = colors.add(f.Colors, v.Color)
			for _, s := range v.Sizes {
				f.Sizes = sizes.add(f.Sizes, s.Size)
			}
		}

		if i == 0 || p.BasePrice < f.Price.Min {
			f.Price.Min = p.BasePrice
		}
		if i == 0 || p.BasePrice > f.Price.Max {
			f.Price.Max = p.BasePrice
		}
	}

	return f
}

type uniq map[string]struct{}

func newUniq() uniq {
	return make(uniq)
}

func (u uniq) add(out []string, v string) []string {
	if v == "" {
		return out
	}
	if _, ok := u[v]; ok {
		return out
	}
	u[v] = struct{}{}
	return append(out, v)
}
