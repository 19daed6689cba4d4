package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/models"
	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/service"
	"github.com/Skotchmaster/restaurant_backoffice/internal/jwtmiddleware"
)

type users map[uint]*models.User

func (u users) User(_ context.Context, id uint) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, service.ErrInvalidToken
}

func TestRequireStaff(t *testing.T) {
	known := users{
		1: {ID: 1, Username: "admin", IsStaff: true},
		2: {ID: 2, Username: "waiter"},
	}

	tests := []struct {
		name   string
		claims *service.Claims
		want   int
	}{
		{name: "no token", want: http.StatusUnauthorized},
		{name: "staff access token", claims: &service.Claims{TokenType: service.TokenTypeAccess, UserID: 1}, want: http.StatusOK},
		{name: "refresh token", claims: &service.Claims{TokenType: service.TokenTypeRefresh, UserID: 1}, want: http.StatusUnauthorized},
		{name: "not staff", claims: &service.Claims{TokenType: service.TokenTypeAccess, UserID: 2}, want: http.StatusForbidden},
		{name: "deleted user", claims: &service.Claims{TokenType: service.TokenTypeAccess, UserID: 9}, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if tt.claims != nil {
				c.Set(jwtmiddleware.ContextKey, &jwt.Token{Claims: tt.claims, Valid: true})
			}

			err := RequireStaff(known)(func(c echo.Context) error {
				assert.Equal(t, tt.claims.UserID, c.Get("user_id"))
				return c.NoContent(http.StatusOK)
			})(c)

			if tt.want == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok, "unexpected error %v", err)
			assert.Equal(t, tt.want, he.Code)
		})
	}
}
