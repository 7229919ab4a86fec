package services

import (
	"fmt"
	"os"
	"time"

	"github.com/EmilianoRojas/brigade-awards/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims carry the caller's verified attributes so core operations
// never have to refetch the user row: id, group, gender, partner id and
// partnered flag.
type TokenClaims struct {
	UserID      string  `json:"user_id"`
	UserGroup   string  `json:"user_group"`
	Gender      string  `json:"gender,omitempty"`
	PartnerID   *string `json:"partner_id,omitempty"`
	IsPartnered bool    `json:"is_partnered"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "brigade-awards-secret-key" // Default for development
	}
	return []byte(secret)
}

// GenerateToken signs a bearer token for a user.
func GenerateToken(u *models.User) (string, error) {
	claims := TokenClaims{
		UserID:      u.ID,
		UserGroup:   u.UserGroup,
		Gender:      u.Gender,
		PartnerID:   u.PartnerID,
		IsPartnered: u.IsPartnered,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "brigade-awards",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// VerifyToken parses and validates a bearer token, returning the caller's
// identity.
func VerifyToken(tokenString string) (models.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return models.Identity{}, err
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return models.Identity{}, jwt.ErrTokenInvalidClaims
	}

	return models.Identity{
		UserID:      claims.UserID,
		UserGroup:   claims.UserGroup,
		Gender:      claims.Gender,
		PartnerID:   claims.PartnerID,
		IsPartnered: claims.IsPartnered,
	}, nil
}
