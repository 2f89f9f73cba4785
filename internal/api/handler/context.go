package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/salonbook/salon-api/internal/api/middleware"
	"github.com/salonbook/salon-api/internal/core/domain"
)

// ctxIdentity returns the caller injected by the Auth middleware. A route
// mounted without Auth fails fast with ErrUnauthorized instead of reaching the
// service with an empty user id.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return identity, nil
}
