package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nannyslm/platform-api/internal/api/metrics"
	"github.com/nannyslm/platform-api/internal/core/domain"
	"github.com/nannyslm/platform-api/internal/core/ports"
)

// AuthHandler handles HTTP requests for registration and login.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account with the role given in the payload.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	return h.register(c, func(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
		return h.authService.Register(ctx, input)
	})
}

// RegisterNanny creates a new account with the nanny role, regardless of the
// role field in the payload.
//
// @Summary      Register a new nanny
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/register/nanny [post]
func (h *AuthHandler) RegisterNanny(c echo.Context) error {
	return h.register(c, h.authService.RegisterNanny)
}

// RegisterClient creates a new account with the client role, regardless of
// the role field in the payload.
//
// @Summary      Register a new client
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/register/client [post]
func (h *AuthHandler) RegisterClient(c echo.Context) error {
	return h.register(c, h.authService.RegisterClient)
}

func (h *AuthHandler) register(c echo.Context, create func(context.Context, ports.RegisterInput) (*domain.User, error)) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleClient
	}

	user, err := create(c.Request().Context(), ports.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Role:      role,
	})
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(user.Role)).Inc()
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login authenticates a user from an OAuth2-style form body and returns a
// bearer token alongside the public user view.
//
// @Summary      Login
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Account email"
// @Param        password  formData  string  true  "Password"
// @Success      200  {object}  loginResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	email := c.FormValue("username")
	password := c.FormValue("password")
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return domain.ErrInvalidCredentials
	}

	result, err := h.authService.Login(c.Request().Context(), email, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   result.ExpiresIn,
		User:        toUserResponse(result.User),
	})
}

// Logout acknowledges a logout. Tokens are stateless, so invalidation is the
// client's job: it drops the token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "session closed"})
}
