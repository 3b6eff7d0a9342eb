package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CategoryRequest defines the structure for category creation requests
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListCategories retrieves all categories of the resolved store
func (h *Handler) ListCategories(c echo.Context) error {
	s, err := store(c, "handler.ListCategories")
	if err != nil {
		return err
	}

	categories, err := h.catalog.ListCategories(c.Request().Context(), s.ID)
	if err != nil {
		return err
	}

	views := make([]categoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, newCategoryView(category))
	}
	return success(c, http.StatusOK, echo.Map{"categories": views})
}

// GetCategory retrieves one category with its products
func (h *Handler) GetCategory(c echo.Context) error {
	s, err := store(c, "handler.GetCategory")
	if err != nil {
		return err
	}

	category, err := h.catalog.FindCategory(c.Request().Context(), s.ID, c.Param("category_name"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"category": newCategoryView(*category)})
}

// CreateCategory adds a new empty category
func (h *Handler) CreateCategory(c echo.Context) error {
	const op = "handler.CreateCategory"

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(op, "Invalid request data")
	}
	s, err := store(c, op)
	if err != nil {
		return err
	}

	category, err := h.catalog.CreateCategory(c.Request().Context(), s.ID, req.Name, req.Description)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"category": newCategoryView(*category)})
}

// DeleteCategory removes a category and its products
func (h *Handler) DeleteCategory(c echo.Context) error {
	s, err := store(c, "handler.DeleteCategory")
	if err != nil {
		return err
	}

	name := c.Param("category_name")
	if err := h.catalog.DeleteCategory(c.Request().Context(), s.ID, name); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "Category " + name + " deleted"})
}
