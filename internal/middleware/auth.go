package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"cryptohustle/internal/domain"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"

	// TokenCookie is where the web client keeps its session token. The
	// Telegram webview cannot set Authorization headers on page loads,
	// so the cookie path is the primary one there.
	TokenCookie = "token"

	tokenTTL = 24 * time.Hour
)

// JWTClaims carries the authenticated user through a session token.
type JWTClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// GetJWTSecret returns the signing secret from the environment.
func GetJWTSecret() string {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret
	}
	return "default-secret-change-in-production" // dev fallback only
}

// GenerateJWT issues a session token for the user.
func GenerateJWT(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(GetJWTSecret()))
}

// tokenFromRequest pulls the raw token out of the Authorization header,
// falling back to the session cookie.
func tokenFromRequest(c echo.Context) (string, error) {
	if header := c.Request().Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", fmt.Errorf("malformed authorization header")
		}
		return parts[1], nil
	}
	cookie, err := c.Cookie(TokenCookie)
	if err != nil {
		return "", fmt.Errorf("no token in request")
	}
	return cookie.Value, nil
}

// AuthMiddleware validates the session token and puts the user's
// identity on the request context.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing authentication token")
		}

		token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(GetJWTSecret()), nil
		})
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		claims, ok := token.Claims.(*JWTClaims)
		if !ok || !token.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token claims")
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		return next(c)
	}
}

// AdminMiddleware gates the admin console. It runs behind
// AuthMiddleware, which has already put the role on the context.
func AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, ok := c.Get(ctxRole).(string)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "User role not found in context")
		}
		if role != domain.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}
		return next(c)
	}
}

// GetUserID extracts the authenticated user's ID from the context.
func GetUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(ctxUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("user_id not found in context")
	}
	return userID, nil
}
