package jwtmiddleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const ContextKey = "user"

// JWTMiddleware authenticates "Authorization: Bearer <token>" with an HS256
// secret. newClaims decides the claims type stored under ContextKey.
func JWTMiddleware(secret []byte, newClaims func(c echo.Context) jwt.Claims) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningMethod: "HS256",
		SigningKey:    secret,
		ContextKey:    ContextKey,
		TokenLookup:   "header:Authorization:Bearer ",
		NewClaimsFunc: newClaims,
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Given token not valid for any token type").SetInternal(err)
		},
	})
}

func Token(c echo.Context) (*jwt.Token, bool) {
	tok, ok := c.Get(ContextKey).(*jwt.Token)
	return tok, ok
}
