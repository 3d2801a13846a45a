package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor"

var errUnauthenticated = errors.New("unauthenticated")

// Claims is the bearer token payload. The subject is the user id; managers also carry
// the supermarket and location they work at.
type Claims struct {
	jwt.RegisteredClaims

	Roles         []string `json:"roles"`
	SupermarketID string   `json:"supermarket_id,omitempty"`
	LocationID    string   `json:"location_id,omitempty"`
}

// Authenticate parses an HS256 bearer token into an authz.Actor stored on the echo context.
// Token issuance lives outside this service; the claims are trusted once the signature
// and expiry check out.
func Authenticate(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}

			parts := strings.Split(raw, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token format")
			}

			actor, err := ParseActor(secret, parts[1])
			if err != nil {
				c.Logger().Debugf("token rejected: %v", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}

			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// ParseActor validates token and maps its claims to an actor. Unknown roles are ignored.
func ParseActor(secret []byte, token string) (authz.Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return authz.Actor{}, fmt.Errorf("%w: %w", errUnauthenticated, err)
	}

	userID, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return authz.Actor{}, fmt.Errorf("%w: subject: %w", errUnauthenticated, err)
	}

	actor := authz.Actor{UserID: userID}
	for _, role := range claims.Roles {
		switch capability := authz.Capability(role); capability {
		case authz.Client, authz.OrderValidator, authz.Driver, authz.Dispatcher:
			actor.Capabilities = append(actor.Capabilities, capability)
		}
	}
	if actor.SupermarketID, err = optionalClaimID(claims.SupermarketID); err != nil {
		return authz.Actor{}, fmt.Errorf("%w: supermarket_id: %w", errUnauthenticated, err)
	}
	if actor.LocationID, err = optionalClaimID(claims.LocationID); err != nil {
		return authz.Actor{}, fmt.Errorf("%w: location_id: %w", errUnauthenticated, err)
	}

	return actor, nil
}

// IssueToken signs a token for actor. Used by operators and tests; production tokens
// come from the identity provider.
func IssueToken(secret []byte, actor authz.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	for _, capability := range actor.Capabilities {
		claims.Roles = append(claims.Roles, string(capability))
	}
	if actor.SupermarketID != nil {
		claims.SupermarketID = actor.SupermarketID.String()
	}
	if actor.LocationID != nil {
		claims.LocationID = actor.LocationID.String()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func optionalClaimID(raw string) (*kernel.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func actorFrom(c echo.Context) authz.Actor {
	actor, _ := c.Get(actorKey).(authz.Actor)
	return actor
}
