package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/emberwok/takeout/internal/core/domain/cart"
)

func (s *Server) addToCart(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req cart.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.cartSvc.Add(c.Request().Context(), uid, &req); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) listCart(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	items, err := s.cartSvc.List(c.Request().Context(), uid)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) cleanCart(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	if err := s.cartSvc.Clean(c.Request().Context(), uid); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusOK)
}
