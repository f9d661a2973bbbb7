package services

import (
	"fmt"

	"campus-desk/auth"
	apperrors "campus-desk/errors"
	"campus-desk/repositories"
)

type Token string

type IAuthService interface {
	Register(username, name, registration, password string) (Token, error)
	Login(username, password string) (Token, *auth.Claims, error)
}

type AuthService struct {
	users  repositories.IUserRepository
	issuer auth.TokenIssuer
}

func NewAuthService(users repositories.IUserRepository, issuer auth.TokenIssuer) IAuthService {
	return &AuthService{users: users, issuer: issuer}
}

func (s *AuthService) Register(username, name, registration, password string) (Token, error) {
	req := auth.RegisterRequest{
		Username:     username,
		Name:         name,
		Registration: registration,
		Password:     password,
	}
	// Business rules first; hashing is the expensive part.
	if err := auth.ValidateRegister(req); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidPassword, err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	if _, err := s.users.CreateUser(username, name, registration, hashed, "student"); err != nil {
		return "", err
	}

	token, err := s.issuer.Generate(username, "student", name)
	if err != nil {
		return "", apperrors.ErrTokenGeneration
	}
	return Token(token), nil
}

func (s *AuthService) Login(username, password string) (Token, *auth.Claims, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		// Generic error to prevent user enumeration.
		return "", nil, apperrors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.issuer.Generate(user.Username, user.Role, user.Name)
	if err != nil {
		return "", nil, apperrors.ErrTokenGeneration
	}
	return Token(token), &auth.Claims{Username: user.Username, Role: user.Role, Name: user.Name}, nil
}
