package handler

import (
	"net/http"

	"storefront-service/internal/service"

	"github.com/labstack/echo/v4"
)

// AddProduct appends a product to the category in the path
func (h *Handler) AddProduct(c echo.Context) error {
	const op = "handler.AddProduct"

	var req service.NewProduct
	if err := c.Bind(&req); err != nil {
		return badRequest(op, "Invalid request data")
	}
	s, err := store(c, op)
	if err != nil {
		return err
	}

	product, err := h.catalog.AddProduct(c.Request().Context(), s.ID, c.Param("category_name"), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"product": newProductView(*product)})
}

// GetProduct retrieves one product by id
func (h *Handler) GetProduct(c echo.Context) error {
	s, err := store(c, "handler.GetProduct")
	if err != nil {
		return err
	}

	product, err := h.catalog.GetProduct(c.Request().Context(), s.ID, c.Param("category_name"), c.Param("product"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"product": newProductView(*product)})
}

// RemoveProduct removes a product by id
func (h *Handler) RemoveProduct(c echo.Context) error {
	s, err := store(c, "handler.RemoveProduct")
	if err != nil {
		return err
	}

	id := c.Param("product")
	if err := h.catalog.RemoveProduct(c.Request().Context(), s.ID, c.Param("category_name"), id); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "Product " + id + " removed"})
}

// UpdateStock replaces the stock of the product named in the path. The body is a JSON array of strings.
func (h *Handler) UpdateStock(c echo.Context) error {
	const op = "handler.UpdateStock"

	var stock []string
	if err := c.Echo().JSONSerializer.Deserialize(c, &stock); err != nil {
		return badRequest(op, "Body must be a JSON array of stock identifiers")
	}
	s, err := store(c, op)
	if err != nil {
		return err
	}

	if stock == nil {
		stock = []string{}
	}
	name := c.Param("product")
	if err := h.catalog.UpdateStock(c.Request().Context(), s.ID, c.Param("category_name"), name, stock); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "Stock of " + name + " updated", "stock": stock})
}
