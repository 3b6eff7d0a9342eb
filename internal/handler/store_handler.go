package handler

import (
	"net/http"

	"storefront-service/internal/service"

	"github.com/labstack/echo/v4"
)

// CreateStoreRequest optionally names the store's first administrator
type CreateStoreRequest struct {
	Admin *service.Registration `json:"admin"`
}

// CreateStore creates the store named in the path
func (h *Handler) CreateStore(c echo.Context) error {
	var req CreateStoreRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("handler.CreateStore", "Invalid request data")
	}

	created, err := h.stores.CreateStore(c.Request().Context(), c.Param("store_name"), req.Admin)
	if err != nil {
		return err
	}

	payload := echo.Map{"store": created.Store}
	if created.Admin != nil {
		payload["admin"] = created.Admin
		payload["token"] = created.Token
	}
	return success(c, http.StatusCreated, payload)
}

// DeleteStore deletes the store named in the path with everything it owns
func (h *Handler) DeleteStore(c echo.Context) error {
	name := c.Param("store_name")
	if err := h.stores.DeleteStore(c.Request().Context(), name); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "Store " + name + " deleted"})
}
