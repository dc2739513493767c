package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-service/internal/domain"
	apperrors "github.com/spec-kit/clinic-service/pkg/util"
)

const identityKey = "auth_identity"

// Identity is the request-scoped result of credential verification. It lives
// only for the duration of the request and is never persisted.
type Identity struct {
	SubjectID string
	Role      domain.Role
}

// AuthMiddleware validates bearer credentials and attaches the decoded
// identity to the request. It performs no I/O: the identity comes entirely
// from the verified claim.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes. The header must be
// exactly "Bearer <token>": no case folding, no surrounding whitespace, no
// extra delimiters.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewAccessDenied("missing authorization header")
	}

	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found || token == "" || strings.ContainsAny(token, " \t") {
		return apperrors.NewAccessDenied("invalid authorization header")
	}

	claims, err := m.tokens.VerifyToken(token)
	if err != nil {
		return apperrors.NewInvalidCredential()
	}

	c.Locals(identityKey, &Identity{SubjectID: claims.SubjectID, Role: claims.Role})
	return c.Next()
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok
}
