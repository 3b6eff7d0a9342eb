package model

// Product lives inside one category. Stock is a list of stock-unit identifiers and
// is replaced wholesale on update.
type Product struct {
	ID           string   `json:"id" bson:"_id"`
	Name         string   `json:"name" bson:"name"`
	Description  string   `json:"description" bson:"description"`
	Price        float64  `json:"price" bson:"price"`
	DiscountRate *float64 `json:"discount_rate,omitempty" bson:"discount_rate,omitempty"`
	Stock        []string `json:"stock" bson:"stock"`
}

// FinalPrice is the price after discount, or the plain price when no discount is set
func (p *Product) FinalPrice() float64 {
	if p.DiscountRate == nil {
		return p.Price
	}
	return p.Price * (1 - *p.DiscountRate)
}
