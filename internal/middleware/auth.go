package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ivorybeauty/internal/config"
)

// Identity tags who is making the request. Endpoints readable by the
// owning user or any admin branch on Kind instead of re-parsing tokens.
type Identity struct {
	Kind    string // "user", "admin" or "guest"
	Subject primitive.ObjectID
}

const (
	IdentityUser  = "user"
	IdentityAdmin = "admin"
	IdentityGuest = "guest"

	identityKey = "identity"
)

// UserAuth requires a valid bearer token carrying a userId claim.
func UserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := identityFromRequest(c)
		if err != nil || identity.Kind != IdentityUser {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// AdminAuth requires a valid bearer token carrying an adminId claim.
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := identityFromRequest(c)
		if err != nil || identity.Kind != IdentityAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin access required"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// Identify resolves the caller to a tagged identity without rejecting
// anyone; an absent or invalid token yields a guest. Handlers behind it
// apply their own policy over the tag.
func Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := identityFromRequest(c)
		if err != nil {
			identity = Identity{Kind: IdentityGuest}
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// CallerIdentity returns the identity set by UserAuth, AdminAuth or
// Identify; a guest identity when no middleware ran.
func CallerIdentity(c *gin.Context) Identity {
	if value, exists := c.Get(identityKey); exists {
		if identity, ok := value.(Identity); ok {
			return identity
		}
	}
	return Identity{Kind: IdentityGuest}
}

// UserID is a convenience for handlers behind UserAuth.
func UserID(c *gin.Context) primitive.ObjectID {
	return CallerIdentity(c).Subject
}

var errNoToken = errors.New("no bearer token")

func identityFromRequest(c *gin.Context) (Identity, error) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return Identity{}, errNoToken
	}
	return parseIdentity(strings.TrimPrefix(header, "Bearer "))
}

func parseIdentity(tokenString string) (Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppEnv.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	if raw, ok := claims["adminId"].(string); ok {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return Identity{}, errors.New("malformed adminId claim")
		}
		return Identity{Kind: IdentityAdmin, Subject: id}, nil
	}
	if raw, ok := claims["userId"].(string); ok {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return Identity{}, errors.New("malformed userId claim")
		}
		return Identity{Kind: IdentityUser, Subject: id}, nil
	}
	return Identity{}, errors.New("token carries no subject claim")
}
