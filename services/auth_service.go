package services

import (
	"chat-core/auth"
	"chat-core/domain"
	"chat-core/errors"
	"chat-core/mailer"
	"chat-core/store"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

// MaxHandleBase is the length of a generated handle before any numeric suffix.
const MaxHandleBase = 20

type IAuthService interface {
	Register(email, password, firstName, lastName string) (AuthResult, error)
	Login(email, password string) (AuthResult, error)
	Logout(token string) error
	ResolveToken(token string) (domain.UserID, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(code, newPassword string) error
}

type AuthService struct {
	log    *slog.Logger
	store  *store.Store
	tokens auth.TokenIssuer
	mailer mailer.Mailer
}

func NewAuthService(log *slog.Logger, st *store.Store, tokens auth.TokenIssuer, m mailer.Mailer) IAuthService {
	return &AuthService{log: log, store: st, tokens: tokens, mailer: m}
}

func (s *AuthService) Register(email, password, firstName, lastName string) (AuthResult, error) {
	// 1. Validate before any expensive cryptographic operation
	err := auth.ValidateRegister(auth.RegisterRequest{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		return AuthResult{}, err
	}

	// 2. Hash outside the gate
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Uniqueness is only decided under the gate
	var userID domain.UserID
	var sessionID string
	err = s.store.Update(func(tx *store.Tx) error {
		if _, taken := tx.UserByEmail(email); taken {
			return errors.ErrEmailTaken
		}
		u := tx.AddUser(domain.User{
			FirstName:    firstName,
			LastName:     lastName,
			Email:        email,
			PasswordHash: hashedPassword,
			Handle:       GenerateHandle(tx, firstName, lastName),
		})
		userID = u.ID
		sessionID = tx.OpenSession(u.ID)
		return nil
	})
	if err != nil {
		return AuthResult{}, err
	}

	// 4. Initial session token
	token, err := s.tokens.GenerateToken(sessionID)
	if err != nil {
		return AuthResult{}, err
	}
	s.log.Info("User registered", "user", userID)
	return AuthResult{Token: token, UserID: userID}, nil
}

func (s *AuthService) Login(email, password string) (AuthResult, error) {
	var hash string
	var userID domain.UserID
	err := s.store.View(func(tx *store.Tx) error {
		u, ok := tx.UserByEmail(email)
		if !ok {
			// Same error as a wrong password to prevent user enumeration
			return errors.ErrInvalidCredentials
		}
		hash, userID = u.PasswordHash, u.ID
		return nil
	})
	if err != nil {
		return AuthResult{}, err
	}

	match, err := auth.ComparePassword(password, hash)
	if err != nil || !match {
		return AuthResult{}, errors.ErrInvalidCredentials
	}

	var sessionID string
	err = s.store.Update(func(tx *store.Tx) error {
		if !tx.UserExists(userID) {
			return errors.ErrInvalidCredentials
		}
		sessionID = tx.OpenSession(userID)
		return nil
	})
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.tokens.GenerateToken(sessionID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, UserID: userID}, nil
}

func (s *AuthService) Logout(token string) error {
	sessionID, err := s.tokens.ValidateToken(token)
	if err != nil {
		return err
	}
	return s.store.Update(func(tx *store.Tx) error {
		if !tx.CloseSession(sessionID) {
			return errors.ErrInvalidToken
		}
		return nil
	})
}

// ResolveToken maps a token to the user of its still open session.
func (s *AuthService) ResolveToken(token string) (domain.UserID, error) {
	sessionID, err := s.tokens.ValidateToken(token)
	if err != nil {
		return 0, err
	}
	var userID domain.UserID
	err = s.store.View(func(tx *store.Tx) error {
		id, ok := tx.Session(sessionID)
		if !ok || !tx.UserExists(id) {
			return errors.ErrInvalidToken
		}
		userID = id
		return nil
	})
	return userID, err
}

// RequestPasswordReset ends every session of the user and mails a reset code.
// An unknown email is silently ignored, and so is a delivery failure, so the
// caller cannot probe which emails are registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	var code string
	err := s.store.Update(func(tx *store.Tx) error {
		u, ok := tx.UserByEmail(email)
		if !ok {
			return nil
		}
		tx.CloseSessions(u.ID)
		code = tx.IssueResetCode(u.ID)
		return nil
	})
	if err != nil || code == "" {
		return err
	}

	if err = s.mailer.SendPasswordReset(ctx, email, code); err != nil {
		s.log.Error("Password reset delivery failed", "error", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(code, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}
	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing failed: %w", err)
	}
	return s.store.Update(func(tx *store.Tx) error {
		id, ok := tx.ConsumeResetCode(code)
		if !ok {
			return errors.ErrInvalidResetCode
		}
		u, err := tx.User(id)
		if err != nil {
			return errors.ErrInvalidResetCode
		}
		u.PasswordHash = hashedPassword
		return nil
	})
}

// GenerateHandle concatenates the lowercase alphanumeric characters of both
// names, cut to MaxHandleBase. A taken handle gets the smallest free numeric
// suffix, starting at 0.
func GenerateHandle(tx *store.Tx, firstName, lastName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(firstName + lastName) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	base := []rune(b.String())
	handle := string(base[:min(len(base), MaxHandleBase)])
	if handle == "" {
		handle = "user"
	}

	if _, taken := tx.UserByHandle(handle); !taken {
		return handle
	}
	for i := 0; ; i++ {
		candidate := handle + strconv.Itoa(i)
		if _, taken := tx.UserByHandle(candidate); !taken {
			return candidate
		}
	}
}
