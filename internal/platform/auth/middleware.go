package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sereno/sereno/internal/platform/httperr"
)

// Middleware requires a valid bearer token and places the verified identity
// on the request context.
func Middleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr, ok := bearerToken(c)
			if !ok {
				return httperr.Unauthorized("No token provided")
			}

			claims, err := issuer.Verify(tokenStr)
			if err != nil {
				return httperr.InvalidToken("Invalid or expired token")
			}

			c.SetRequest(c.Request().WithContext(withIdentity(c.Request().Context(), claims)))
			return next(c)
		}
	}
}

// Optional parses a bearer token when one is presented but lets anonymous
// requests through. Screening endpoints use it: an authenticated caller's
// identity claims the submission, an anonymous caller supplies the subject
// explicitly.
func Optional(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if tokenStr, ok := bearerToken(c); ok {
				if claims, err := issuer.Verify(tokenStr); err == nil {
					c.SetRequest(c.Request().WithContext(withIdentity(c.Request().Context(), claims)))
				}
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func withIdentity(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	return context.WithValue(ctx, UserMobileKey, claims.Mobile)
}
