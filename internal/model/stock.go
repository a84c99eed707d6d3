package model

// StockEntry is a retailer's record of one company's product it carries.
// Entries are compared by full structural equality for removal, not by ID;
// UpdateQuantity matches by ID.
type StockEntry struct {
	ID                string `bson:"id" json:"id"`
	CompanyName       string `bson:"company_name" json:"companyName"`
	ProductName       string `bson:"product_name" json:"productName"`
	ProductCategories string `bson:"product_categories" json:"productCategories"`
	NumberOfItems     int    `bson:"number_of_items" json:"numberOfItems"`
	ProductImage      string `bson:"product_image" json:"productImage"`
}

// SetStockQuantity rewrites the list with the entry matching id set to n,
// leaving the others untouched. An id with no matching entry is a no-op.
func SetStockQuantity(stocks []StockEntry, id string, n int) []StockEntry {
	out := make([]StockEntry, 0, len(stocks))
	for _, s := range stocks {
		if s.ID == id {
			s.NumberOfItems = n
		}
		out = append(out, s)
	}
	return out
}
