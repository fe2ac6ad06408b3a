package services

import (
	"chat-core/auth"
	"chat-core/domain"
	"chat-core/errors"
	"chat-core/mocks"
	"chat-core/store"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAuthService(t *testing.T, m *mocks.MockMailer) (IAuthService, *store.Store) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	st := store.New(log)
	return NewAuthService(log, st, auth.NewTokenIssuer("test-secret", time.Hour), m), st
}

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, st := newAuthService(t, mocks.NewMockMailer(ctrl))

	t.Run("should register and resolve the first token", func(t *testing.T) {
		req := require.New(t)
		res, err := svc.Register("ada@chat.io", "secret1", "Ada", "Lovelace")
		req.NoError(err)
		req.Equal(domain.UserID(1), res.UserID)
		req.NotEmpty(res.Token)

		id, err := svc.ResolveToken(res.Token)
		req.NoError(err)
		req.Equal(res.UserID, id)

		req.NoError(st.View(func(tx *store.Tx) error {
			u, err := tx.User(id)
			req.NoError(err)
			req.Equal("adalovelace", u.Handle)
			req.NotEqual("secret1", u.PasswordHash)
			req.True(tx.IsGlobalOwner(id))
			return nil
		}))
	})

	t.Run("should fail when input is invalid", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.Register("nope", "secret1", "Ada", "Lovelace")
		req.ErrorIs(err, errors.ErrInvalidEmail)
		_, err = svc.Register("bob@chat.io", "short", "Bob", "Jones")
		req.ErrorIs(err, errors.ErrInvalidPassword)
		_, err = svc.Register("bob@chat.io", "secret1", "", "Jones")
		req.ErrorIs(err, errors.ErrInvalidName)
	})

	t.Run("should fail when email is already used", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.Register("ada@chat.io", "another1", "Ada", "Bis")
		req.ErrorIs(err, errors.ErrEmailTaken)
		req.True(errors.IsInput(err))
	})
}

func TestAuthService_LoginLogout(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, _ := newAuthService(t, mocks.NewMockMailer(ctrl))
	reg, err := svc.Register("ada@chat.io", "secret1", "Ada", "Lovelace")
	req.NoError(err)

	_, err = svc.Login("ada@chat.io", "wrong-pass")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
	_, err = svc.Login("nobody@chat.io", "secret1")
	req.ErrorIs(err, errors.ErrInvalidCredentials)

	login, err := svc.Login("ada@chat.io", "secret1")
	req.NoError(err)
	req.Equal(reg.UserID, login.UserID)

	req.NoError(svc.Logout(login.Token))
	_, err = svc.ResolveToken(login.Token)
	req.ErrorIs(err, errors.ErrInvalidToken)
	req.ErrorIs(svc.Logout(login.Token), errors.ErrInvalidToken)

	id, err := svc.ResolveToken(reg.Token)
	req.NoError(err)
	req.Equal(reg.UserID, id)

	_, err = svc.ResolveToken("garbage")
	req.ErrorIs(err, errors.ErrInvalidToken)
	req.True(errors.IsAccess(err))
}

func TestAuthService_PasswordReset(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mailer := mocks.NewMockMailer(ctrl)
	svc, _ := newAuthService(t, mailer)
	reg, err := svc.Register("ada@chat.io", "secret1", "Ada", "Lovelace")
	req.NoError(err)

	var code string
	mailer.EXPECT().
		SendPasswordReset(gomock.Any(), "ada@chat.io", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, c string) error {
			code = c
			return nil
		}).
		Times(1)

	req.NoError(svc.RequestPasswordReset(context.Background(), "unknown@chat.io"))
	req.NoError(svc.RequestPasswordReset(context.Background(), "ada@chat.io"))
	req.NotEmpty(code)

	_, err = svc.ResolveToken(reg.Token)
	req.ErrorIs(err, errors.ErrInvalidToken)

	req.ErrorIs(svc.ResetPassword(code, "short"), errors.ErrInvalidPassword)
	req.ErrorIs(svc.ResetPassword("bad-code", "newsecret"), errors.ErrInvalidResetCode)
	req.NoError(svc.ResetPassword(code, "newsecret"))
	req.ErrorIs(svc.ResetPassword(code, "newsecret"), errors.ErrInvalidResetCode)

	_, err = svc.Login("ada@chat.io", "secret1")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
	_, err = svc.Login("ada@chat.io", "newsecret")
	req.NoError(err)
}

func TestAuthService_ResetDeliveryFailureIsSilent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mailer := mocks.NewMockMailer(ctrl)
	svc, _ := newAuthService(t, mailer)
	_, err := svc.Register("ada@chat.io", "secret1", "Ada", "Lovelace")
	req.NoError(err)

	mailer.EXPECT().
		SendPasswordReset(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("smtp down"))

	req.NoError(svc.RequestPasswordReset(context.Background(), "ada@chat.io"))
}

func TestGenerateHandle(t *testing.T) {
	req := require.New(t)
	st := store.New(logs.GetLoggerFromLevel(slog.LevelDebug))

	req.NoError(st.Update(func(tx *store.Tx) error {
		tests := []struct {
			first, last string
			want        string
		}{
			{"Ada", "Lovelace", "adalovelace"},
			{"Ada", "Lovelace", "adalovelace0"},
			{"Ada", "Lovelace", "adalovelace1"},
			{"Jean-Luc", "O'Neil 3rd", "jeanluconeil3rd"},
			{"Maximilian", "Oppenheimerstein", "maximilianoppenheime"},
			{"Maximilian", "Oppenheimerstein", "maximilianoppenheime0"},
			{"!!", "??", "user"},
		}
		for _, tt := range tests {
			got := GenerateHandle(tx, tt.first, tt.last)
			req.Equal(tt.want, got)
			tx.AddUser(domain.User{FirstName: tt.first, LastName: tt.last, Handle: got})
		}
		return nil
	}))
}
