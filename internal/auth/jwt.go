package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims are the claims extracted from an access token for display
// purposes only.
type IdentityClaims struct {
	Subject string
	Email   string
	Name    string
}

// ExtractIdentity parses an access token without verifying its signature.
// This is safe because the token is only used for display; the backend
// verifies it on every API call.
func ExtractIdentity(tokenString string) (*IdentityClaims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	token, _, err := parser.ParseUnverified(tokenString, &jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	identity := &IdentityClaims{}
	if sub, ok := (*claims)["sub"].(string); ok {
		identity.Subject = sub
	}
	if email, ok := (*claims)["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := (*claims)["name"].(string); ok {
		identity.Name = name
	}

	return identity, nil
}

// DisplayName returns the best available display name for the user.
func (c *IdentityClaims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}

	if c.Email != "" {
		if at := strings.Index(c.Email, "@"); at > 0 {
			return c.Email[:at]
		}
		return c.Email
	}

	return c.Subject
}
