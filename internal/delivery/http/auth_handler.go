package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"cryptohustle/internal/adapter/telegram"
	"cryptohustle/internal/delivery/http/dto"
	"cryptohustle/internal/domain"
	"cryptohustle/internal/middleware"
	"cryptohustle/internal/usecase"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *usecase.AuthService
	userRepo    domain.UserRepository
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *usecase.AuthService, userRepo domain.UserRepository) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userRepo:    userRepo,
	}
}

// Telegram signs a player in with Mini App init data
// POST /api/auth/telegram
func (h *AuthHandler) Telegram(c echo.Context) error {
	var req dto.TelegramAuthRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if req.InitData == "" {
		return BadRequestResponse(c, "init_data is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	result, err := h.authService.TelegramSignIn(ctx, req.InitData, req.ReferralCode)
	if err != nil {
		if errors.Is(err, telegram.ErrInitDataInvalid) || errors.Is(err, telegram.ErrInitDataExpired) {
			return UnauthorizedResponse(c, "Invalid Telegram credentials")
		}
		return DomainErrorResponse(c, err)
	}

	token, err := middleware.GenerateJWT(result.User.ID, result.User.Role)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to generate token", err)
	}

	setTokenCookie(c, token, 86400)

	return SuccessResponse(c, dto.AuthResponse{
		Token:      token,
		User:       result.User,
		IsNew:      result.IsNew,
		DailyBonus: result.DailyBonus,
	})
}

// Login handles admin console login
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if req.Username == "" || req.Password == "" {
		return BadRequestResponse(c, "Username and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return UnauthorizedResponse(c, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return UnauthorizedResponse(c, "Invalid credentials")
	}

	token, err := middleware.GenerateJWT(user.ID, user.Role)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to generate token", err)
	}

	setTokenCookie(c, token, 86400)

	return SuccessResponse(c, dto.AuthResponse{
		Token: token,
		User:  user,
	})
}

// Logout clears the auth cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	setTokenCookie(c, "", -1)
	return SuccessMessageResponse(c, "Logged out", nil)
}

func setTokenCookie(c echo.Context, token string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}
