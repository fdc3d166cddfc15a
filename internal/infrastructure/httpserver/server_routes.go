package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	user := api.Group("/user")
	user.GET("/dish/:id", s.getDish)
	user.GET("/dish", s.listDishes)
	user.GET("/shop/status", s.getShopStatus)
	user.POST("/order", s.submitOrder)
	user.PUT("/order/:id/pay", s.payOrder)
	user.PUT("/order/:id/cancel", s.cancelOrder)
	user.POST("/cart", s.addToCart)
	user.GET("/cart", s.listCart)
	user.DELETE("/cart", s.cleanCart)

	admin := api.Group("/admin")
	admin.POST("/employee/login", s.employeeLogin)
	admin.PUT("/shop/:status", s.setShopStatus)
	admin.POST("/dish", s.createDish)
	admin.PUT("/dish", s.updateDish)
	admin.DELETE("/dish", s.deleteDishes)
}
