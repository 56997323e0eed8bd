package router

import (
	"net/http"
	"storefront-api/config"
	"storefront-api/handler"

	_ "storefront-api/docs"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter(userHandler *handler.UserHandler, healthHandler *handler.HealthHandler, tokenCfg config.TokenConfig) http.Handler {
	mux := http.NewServeMux()
	auth := handler.NewAuthMiddleware(tokenCfg)

	mux.HandleFunc("GET /health", healthHandler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	mux.Handle("POST /api/user/register", handler.ErrorHandlingMiddleware(userHandler.Register))
	mux.Handle("POST /api/user/login", handler.ErrorHandlingMiddleware(userHandler.Login))
	mux.Handle("POST /api/user/refresh", handler.ErrorHandlingMiddleware(userHandler.Refresh))
	mux.Handle("POST /api/user/logout", handler.ErrorHandlingMiddleware(userHandler.Logout))
	mux.Handle("GET /api/user/me", auth(handler.ErrorHandlingMiddleware(userHandler.Me)))

	mux.Handle("GET /api/admin/ping", auth(handler.AdminMiddleware(http.HandlerFunc(handler.AdminPing))))

	return mux
}
