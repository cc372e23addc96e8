package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// parseBearer validates the Authorization header's Bearer token against the
// signing secret and returns its claims.
func parseBearer(c echo.Context, secret string) (jwt.MapClaims, bool) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return nil, false
	}
	raw := strings.TrimPrefix(auth, "Bearer ")
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}

// setClaims copies the identity claims into the echo context under the keys
// handlers read: user_id (uint64), role, name, email.
func setClaims(c echo.Context, claims jwt.MapClaims) {
	if sub, ok := claims["sub"].(float64); ok {
		c.Set("user_id", uint64(sub))
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
	if name, ok := claims["name"].(string); ok {
		c.Set("name", name)
	}
	if email, ok := claims["email"].(string); ok {
		c.Set("email", email)
	}
}

// JWTAuth rejects requests without a valid Bearer access token and injects
// the token's identity claims into the request context.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := parseBearer(c, secret)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or missing token"})
			}
			setClaims(c, claims)
			return next(c)
		}
	}
}

// OptionalJWT injects identity claims when a valid Bearer token is present
// and passes anonymous requests through untouched.  Board routes use it so
// performers get their account identity while audience members stay on
// device uids.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, ok := parseBearer(c, secret); ok {
				setClaims(c, claims)
			}
			return next(c)
		}
	}
}
