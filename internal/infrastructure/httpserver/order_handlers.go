package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/emberwok/takeout/internal/core/domain/order"
)

func (s *Server) submitOrder(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req order.SubmitOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	o, err := s.orderSvc.Submit(c.Request().Context(), uid, &req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (s *Server) payOrder(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order ID")
	}
	if err := s.orderSvc.Pay(c.Request().Context(), uid, orderID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) cancelOrder(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order ID")
	}
	if err := s.orderSvc.Cancel(c.Request().Context(), uid, orderID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusOK)
}
