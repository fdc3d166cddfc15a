package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/internal/core/ports"
	customMiddleware "github.com/emberwok/takeout/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type ServerDeps struct {
	DishService     ports.DishService
	OrderService    ports.OrderService
	CartService     ports.CartService
	EmployeeService ports.EmployeeService
	ShopService     ports.ShopService
	HealthCheckers  []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	dishSvc        ports.DishService
	orderSvc       ports.OrderService
	cartSvc        ports.CartService
	employeeSvc    ports.EmployeeService
	shopSvc        ports.ShopService
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		dishSvc:        deps.DishService,
		orderSvc:       deps.OrderService,
		cartSvc:        deps.CartService,
		employeeSvc:    deps.EmployeeService,
		shopSvc:        deps.ShopService,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
