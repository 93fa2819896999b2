package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/icut-app/icut/internal/lib/logger/sl"
	"github.com/icut-app/icut/internal/models"
	"github.com/icut-app/icut/internal/service"
)

// Auth authorizes the single root operator of the editor backend.
type Auth struct {
	log          *slog.Logger
	jwtMaker     jwtMaker
	rootPassHash []byte
	tokenTTL     time.Duration
}

type jwtMaker interface {
	NewToken(editor models.Editor, duration time.Duration) (string, error)
}

func New(
	log *slog.Logger,
	jwtMaker jwtMaker,
	rootPassHash []byte,
	tokenTTL time.Duration,
) *Auth {
	return &Auth{
		log:          log,
		jwtMaker:     jwtMaker,
		rootPassHash: rootPassHash,
		tokenTTL:     tokenTTL,
	}
}

// Login checks root credentials and returns an access token.
//
// Unknown login or wrong password returns error.
func (a *Auth) Login(_ context.Context, login string, password string) (string, error) {
	const op = "Auth.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("editorname", login),
	)

	log.Info("attempting to login")

	if login != models.RootLogin {
		log.Warn("unknown login")
		return "", fmt.Errorf("%s: %w", op, service.ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword(a.rootPassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, service.ErrInvalidCredentials)
	}

	token, err := a.jwtMaker.NewToken(models.Editor{ID: models.RootID, Login: models.RootLogin}, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("root logged successfully")

	return token, nil
}
