package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/emberwok/takeout/internal/core/domain/employee"
)

func (s *Server) getShopStatus(c echo.Context) error {
	open, err := s.shopSvc.GetStatus(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"open": open})
}

func (s *Server) setShopStatus(c echo.Context) error {
	status := c.Param("status")
	if status != "0" && status != "1" {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be 0 or 1")
	}
	if err := s.shopSvc.SetStatus(c.Request().Context(), status == "1"); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) employeeLogin(c echo.Context) error {
	var req employee.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	e, err := s.employeeSvc.Login(c.Request().Context(), &req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, e)
}
