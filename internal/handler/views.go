package handler

import "storefront-service/internal/model"

// productView is a product as rendered, with its discounted price
type productView struct {
	model.Product
	FinalPrice float64 `json:"final_price"`
}

func newProductView(p model.Product) productView {
	if p.Stock == nil {
		p.Stock = []string{}
	}
	return productView{Product: p, FinalPrice: p.FinalPrice()}
}

type categoryView struct {
	model.Category
	Products []productView `json:"products"`
}

func newCategoryView(c model.Category) categoryView {
	products := make([]productView, 0, len(c.Products))
	for _, p := range c.Products {
		products = append(products, newProductView(p))
	}
	return categoryView{Category: c, Products: products}
}
