// cmd/main.go
package main

import (
	"storefront-api/app"
)

// @title           Storefront API
// @version         1.0
// @description     Storefront identity API.
// @description     /api/user: register, login, refresh (rotating refresh tokens), logout and the current profile (bearer).
// @description     /api/admin: admin-only checks (bearer, admin role).
// @description     /health and /swagger for operations.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
