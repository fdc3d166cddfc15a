package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/emberwok/takeout/internal/core/domain/dish"
)

func (s *Server) getDish(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid dish ID")
	}
	v, err := s.dishSvc.GetWithFlavors(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) listDishes(c echo.Context) error {
	categoryID, err := strconv.ParseInt(c.QueryParam("category_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category ID")
	}
	views, err := s.dishSvc.ListByCategory(c.Request().Context(), categoryID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) createDish(c echo.Context) error {
	var req dish.CreateDishRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	v, err := s.dishSvc.SaveWithFlavors(c.Request().Context(), &req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (s *Server) updateDish(c echo.Context) error {
	var req dish.UpdateDishRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.dishSvc.Update(c.Request().Context(), &req); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) deleteDishes(c echo.Context) error {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.dishSvc.DeleteBatch(c.Request().Context(), req.IDs); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusOK)
}
