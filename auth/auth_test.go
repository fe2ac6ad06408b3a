package auth

import (
	"chat-core/errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("MauvaisMDP", hash)
	req.NoError(err)
	req.False(match)

	_, err = ComparePassword(password, "not-a-hash")
	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{"Valid request", RegisterRequest{"test@example.com", "secret", "Ada", "Lovelace"}, nil},
		{"Invalid email", RegisterRequest{"notanemail", "secret", "Ada", "Lovelace"}, errors.ErrInvalidEmail},
		{"Password too short", RegisterRequest{"test@example.com", "five5", "Ada", "Lovelace"}, errors.ErrInvalidPassword},
		{"Empty first name", RegisterRequest{"test@example.com", "secret", "", "Lovelace"}, errors.ErrInvalidName},
		{"Last name too long", RegisterRequest{"test@example.com", "secret", "Ada", strings.Repeat("a", 51)}, errors.ErrInvalidName},
		{"Fifty runes is fine", RegisterRequest{"test@example.com", "secret", strings.Repeat("é", 50), "Lovelace"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := ValidateRegister(tt.req)
			if tt.wantErr == nil {
				req.NoError(err)
				return
			}
			req.ErrorIs(err, tt.wantErr)
			req.ErrorIs(err, errors.ErrInput)
		})
	}
}

func TestValidateHandleAndChannelName(t *testing.T) {
	req := require.New(t)
	req.NoError(ValidateHandle("abc"))
	req.ErrorIs(ValidateHandle("ab"), errors.ErrInvalidHandle)
	req.ErrorIs(ValidateHandle("has space"), errors.ErrInvalidHandle)
	req.ErrorIs(ValidateHandle(strings.Repeat("a", 21)), errors.ErrInvalidHandle)

	req.NoError(ValidateChannelName("general"))
	req.ErrorIs(ValidateChannelName(""), errors.ErrInvalidChannelName)
	req.ErrorIs(ValidateChannelName(strings.Repeat("c", 21)), errors.ErrInvalidChannelName)
}

func TestTokenIssuer(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.GenerateToken("session-1")
	req.NoError(err)

	sessionID, err := issuer.ValidateToken(token)
	req.NoError(err)
	req.Equal("session-1", sessionID)

	_, err = NewTokenIssuer("other-secret", time.Hour).ValidateToken(token)
	req.ErrorIs(err, errors.ErrInvalidToken)
	req.ErrorIs(err, errors.ErrAccess)

	expired, err := NewTokenIssuer("test-secret", -time.Minute).GenerateToken("session-2")
	req.NoError(err)
	_, err = issuer.ValidateToken(expired)
	req.ErrorIs(err, errors.ErrInvalidToken)

	_, err = issuer.ValidateToken("garbage")
	req.ErrorIs(err, errors.ErrInvalidToken)
}

// BenchmarkHashPassword measures the CPU/RAM cost of a single hash
func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}

func TestComparePassword_MalformedHashes(t *testing.T) {
	req := require.New(t)
	hash, err := HashPassword("s3cret-enough")
	req.NoError(err)
	parts := strings.Split(hash, "$")

	for name, encoded := range map[string]string{
		"wrong algorithm": strings.Replace(hash, "argon2id", "argon2i", 1),
		"wrong version":   strings.Replace(hash, parts[2], "v=1", 1),
		"bad params":      strings.Replace(hash, parts[3], "m=x", 1),
		"bad salt":        strings.Replace(hash, parts[4], "!!", 1),
		"empty key":       strings.TrimSuffix(hash, parts[5]),
	} {
		_, err = ComparePassword("s3cret-enough", encoded)
		req.ErrorIs(err, errHashFormat, name)
	}
}
