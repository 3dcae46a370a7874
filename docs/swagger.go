package docs

// @title           PahadiRaah API
// @version         1.0
// @description     Seat-inventory and booking service for published hill routes. Drivers publish routes with a fixed seat count, passengers book seats, and both sides follow booking and trip updates over a realtime websocket feed.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
