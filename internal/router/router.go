package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"papyrus/internal/auth"
	"papyrus/internal/config"
	"papyrus/internal/handler"
	"papyrus/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	userRepo repository.UserRepository,
	authHandler *handler.AuthHandler,
	textbookHandler *handler.TextbookHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.GET("/auth/verify/:token", authHandler.VerifyEmail)
	api.POST("/auth/resend-verification", authHandler.ResendVerification)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password/:token", authHandler.ResetPassword)

	api.POST("/users/add", userHandler.Add)

	api.POST("/textbooks/search", textbookHandler.Search)
	api.POST("/textbooks/all", textbookHandler.All)
	api.POST("/textbooks/by-user", textbookHandler.ByUser)

	// Secured routes: echo-jwt verifies signature and expiry, then the
	// current-user middleware resolves the subject to a live record.
	secured := api.Group("",
		echojwt.WithConfig(echojwt.Config{
			SigningKey:  []byte(cfg.JWTSecret),
			TokenLookup: "header:" + echo.HeaderAuthorization,
		}),
		auth.CurrentUserMiddleware(jwtService, userRepo),
	)

	secured.POST("/textbooks/add", textbookHandler.Add)
	secured.POST("/textbooks/update", textbookHandler.Update)
	secured.POST("/textbooks/delete", textbookHandler.Delete)
	secured.POST("/textbooks/purchase", textbookHandler.Purchase)

	secured.POST("/users/me", userHandler.Me)
	secured.POST("/users/update", userHandler.Update)
	secured.POST("/users/addBalance", userHandler.AddBalance)
	secured.POST("/users/delete", userHandler.Delete)
	secured.POST("/users/all", userHandler.List)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
