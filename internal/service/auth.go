package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/triskelion9/justdjangoecomm/internal/hash"
	"github.com/triskelion9/justdjangoecomm/internal/models"
	"github.com/triskelion9/justdjangoecomm/internal/repo"
	"github.com/triskelion9/justdjangoecomm/internal/tokens"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const accessTokenTTL = 15 * time.Minute

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password required", ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         "user",
	}

	if err := s.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExists) {
			return fmt.Errorf("%w: username taken", ErrConflict)
		}
		return err
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.Repo.FindUserByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	exp := time.Now().Add(accessTokenTTL)
	token, err := tokens.CreateAccessToken(s.JWTSecret, user.Role, strconv.FormatUint(uint64(user.ID), 10), exp)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, ExpiresAt: exp}, nil
}
