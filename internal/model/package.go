package model

// Package is a sellable bundle (lane time, shoes, food) offered on the packages page.
type Package struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Price           Money  `json:"price"`
	DurationMinutes int    `json:"duration_minutes"`
	MaxGuests       int    `json:"max_guests"`
}

// PackageIndex looks packages up by ID.
type PackageIndex map[string]Package

// NewPackageIndex builds an index; later duplicates overwrite earlier ones.
func NewPackageIndex(pkgs []Package) PackageIndex {
	idx := make(PackageIndex, len(pkgs))
	for _, p := range pkgs {
		idx[p.ID] = p
	}
	return idx
}
