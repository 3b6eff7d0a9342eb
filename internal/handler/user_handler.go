package handler

import (
	"net/http"

	"storefront-service/internal/apperr"
	"storefront-service/internal/middleware"
	"storefront-service/internal/model"
	"storefront-service/internal/service"

	"github.com/labstack/echo/v4"
)

// LoginRequest is the body of a login
type LoginRequest struct {
	LoginID  string `json:"user_id"`
	Password string `json:"password"`
}

// RankRequest is the body of a rank change
type RankRequest struct {
	Rank model.Rank `json:"rank"`
}

// Register signs a customer up in the resolved store
func (h *Handler) Register(c echo.Context) error {
	const op = "handler.Register"

	var req service.Registration
	if err := c.Bind(&req); err != nil {
		return badRequest(op, "Invalid request data")
	}
	s, err := store(c, op)
	if err != nil {
		return err
	}

	user, token, err := h.accounts.Register(c.Request().Context(), s, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, echo.Map{"user": user, "token": token})
}

// Login exchanges a password for a token bound to the resolved store
func (h *Handler) Login(c echo.Context) error {
	const op = "handler.Login"

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(op, "Invalid request data")
	}
	s, err := store(c, op)
	if err != nil {
		return err
	}

	user, token, err := h.accounts.Login(c.Request().Context(), s, req.LoginID, req.Password)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"user": user, "token": token})
}

// Profile returns the authorized principal
func (h *Handler) Profile(c echo.Context) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return apperr.Internal("handler.Profile", errNoUser)
	}
	return success(c, http.StatusOK, echo.Map{"user": user})
}

// SetRank changes the rank of the user in the path
func (h *Handler) SetRank(c echo.Context) error {
	const op = "handler.SetRank"

	var req RankRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(op, "rank must be one of customer, vip, administrator")
	}
	s, err := store(c, op)
	if err != nil {
		return err
	}

	user, err := h.accounts.SetRank(c.Request().Context(), s, c.Param("user_id"), req.Rank)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"user": user})
}
