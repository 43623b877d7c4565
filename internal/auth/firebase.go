package auth

import (
	"context"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/pkg/errors"
)

// IDTokenVerifier is satisfied by *auth.Client from the Firebase Admin SDK.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Identity is what a verified Firebase ID token tells us about the caller.
type Identity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// VerifyFirebaseToken checks idToken with Firebase and extracts the caller's identity.
func VerifyFirebaseToken(ctx context.Context, verifier IDTokenVerifier, idToken string) (*Identity, error) {
	if verifier == nil {
		return nil, errors.Wrap(apperrors.ErrAuthenticationRequired, "firebase sign-in is not configured")
	}
	token, err := verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrAuthenticationRequired, "invalid Firebase ID token")
	}

	id := &Identity{UID: token.UID}
	id.Email, _ = token.Claims["email"].(string)
	id.Name, _ = token.Claims["name"].(string)
	id.Picture, _ = token.Claims["picture"].(string)
	if id.Email == "" {
		return nil, errors.Wrap(apperrors.ErrInvalidInput, "Firebase account has no email address")
	}
	return id, nil
}
