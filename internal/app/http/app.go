package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/cleverframework/clever-v0-galleries/internal/lib/validate"
	appmiddleware "github.com/cleverframework/clever-v0-galleries/internal/middleware"
	httprouters "github.com/cleverframework/clever-v0-galleries/internal/transport/http"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return validate.Struct(cv.validator, i)
}

type Server struct {
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	host    string
	port    string
	secret  string
	timeout time.Duration
}

func New(log *slog.Logger, secret, host, port string, timeout time.Duration, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Validator = &CustomValidator{validator: validate.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(appmiddleware.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	if timeout > 0 {
		e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: timeout,
		}))
	}

	s := &Server{
		log:     log,
		e:       e,
		routers: routers,
		host:    host,
		port:    port,
		secret:  secret,
		timeout: timeout,
	}

	s.BuildRouters()

	return s
}

// Handler нужен тестам, чтобы гонять запросы без сети
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("addr", net.JoinHostPort(s.host, s.port)))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(net.JoinHostPort(s.host, s.port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping http server", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	s.e.GET("/metrics", echoprometheus.NewHandler())
	s.e.GET("/swagger/*", echoSwagger.WrapHandler)

	adminOnly := appmiddleware.AdminOnly(s.log, s.secret)

	api := s.e.Group("/api/v1")
	{
		galleries := api.Group("/galleries")
		{
			galleries.GET("", s.routers.ListGalleries)
			galleries.GET("/slug/:slug", s.routers.GetGalleryBySlug)
			galleries.GET("/slug/:slug/images", s.routers.GetGalleryImagesBySlug)
			galleries.GET("/:id", s.routers.GetGallery)
			galleries.GET("/:id/images", s.routers.GetGalleryImages)

			galleries.POST("", s.routers.CreateGallery, adminOnly)
			galleries.PUT("/:id", s.routers.UpdateGallery, adminOnly)
			galleries.DELETE("/:id", s.routers.DeleteGallery, adminOnly)
			galleries.POST("/:id/images", s.routers.AddImages, adminOnly)
			galleries.DELETE("/:id/images", s.routers.RemoveImages, adminOnly)
		}

		api.POST("/files", s.routers.UploadMedia, adminOnly)
	}
}

// ServeFiles раздает загруженные файлы локального хранилища
func (s *Server) ServeFiles(prefix, dir string) {
	s.e.Static(prefix, dir)
}
