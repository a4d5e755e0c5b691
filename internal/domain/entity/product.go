package entity

// Product is a read-only catalog item. ExternalID is the id in the upstream catalog.
type Product struct {
	ID          string
	ExternalID  string
	Title       string
	Price       float64
	Category    string
	Description string
	Image       string
}

// Matches reports whether ref names this product by store id or catalog id.
func (p *Product) Matches(ref string) bool {
	return ref != "" && (p.ID == ref || p.ExternalID == ref)
}

// WishlistEntry snapshots the product for a wishlist.
func (p *Product) WishlistEntry() WishlistEntry {
	return WishlistEntry{ProductID: p.ID, CatalogID: p.ExternalID, Name: p.Title, Price: p.Price, Image: p.Image}
}
