package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-vidtube/internal/event"
	"go-vidtube/internal/media"
	"go-vidtube/internal/model"
	"go-vidtube/internal/repository"
	"go-vidtube/pkg/apierror"
)

type userFixture struct {
	svc    *UserService
	users  *repository.MockUserRepository
	tokens *repository.MockTokenRepository
	host   *media.MockHost
	bus    *event.InMemoryBus
}

func newUserFixture(t *testing.T) userFixture {
	t.Helper()

	users := new(repository.MockUserRepository)
	tokens := new(repository.MockTokenRepository)
	host := new(media.MockHost)
	bus := event.NewBus()

	tokenSvc, err := NewTokenService(users, tokens, testAccessSecret, testRefreshSecret, time.Hour, 24*time.Hour)
	require.NoError(t, err)

	svc := NewUserService(users, tokenSvc, host, bus)
	svc.SetPasswordCost(bcrypt.MinCost)

	return userFixture{svc: svc, users: users, tokens: tokens, host: host, bus: bus}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	validInput := func(t *testing.T) model.RegisterInput {
		return model.RegisterInput{
			FullName:       "Alice Doe",
			Email:          "alice@example.com",
			Username:       "  Alice ",
			Password:       "s3cret!",
			AvatarPath:     writePNG(t, "avatar.png"),
			CoverImagePath: writePNG(t, "cover.png"),
		}
	}

	t.Run("success stores lowercased username and hashed password", func(t *testing.T) {
		f := newUserFixture(t)
		in := validInput(t)
		events, unsubscribe := f.bus.Subscribe()
		defer unsubscribe()

		f.users.On("ExistsByUsernameOrEmail", ctx, "alice", "alice@example.com").Return(false, nil)
		f.host.On("Upload", ctx, in.AvatarPath).Return(media.Asset{URL: "https://cdn/a.png"}, nil)
		f.host.On("Upload", ctx, in.CoverImagePath).Return(media.Asset{URL: "https://cdn/c.png"}, nil)

		var created model.User
		f.users.On("Create", ctx, mock.MatchedBy(func(u model.User) bool {
			return u.Username == "alice" &&
				u.Avatar == "https://cdn/a.png" &&
				u.CoverImage == "https://cdn/c.png" &&
				u.PasswordHash != "s3cret!" &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret!")) == nil
		})).Run(func(args mock.Arguments) { created = args.Get(1).(model.User) }).Return(nil)
		f.users.On("FindByID", ctx, mock.AnythingOfType("string")).Return(model.User{
			ID: "new-id", Username: "alice", Email: "alice@example.com", Avatar: "https://cdn/a.png",
		}, nil)

		user, err := f.svc.Register(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "new-id", user.ID)
		assert.NotEmpty(t, created.ID)

		select {
		case e := <-events:
			assert.Equal(t, event.TypeUserRegistered, e.Type)
		case <-time.After(time.Second):
			t.Fatal("expected user.registered event")
		}

		f.users.AssertExpectations(t)
		f.host.AssertExpectations(t)
	})

	t.Run("missing fields are listed", func(t *testing.T) {
		f := newUserFixture(t)

		_, err := f.svc.Register(ctx, model.RegisterInput{FullName: "A", Email: " "})
		requireStatus(t, err, http.StatusBadRequest)

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "All fields are required", apiErr.Message)
		assert.ElementsMatch(t, []string{"email is required", "username is required", "password is required"}, apiErr.Errors)
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newUserFixture(t)
		in := validInput(t)
		in.Email = "alice@example"

		_, err := f.svc.Register(ctx, in)
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("existing user conflicts before any upload", func(t *testing.T) {
		f := newUserFixture(t)
		f.users.On("ExistsByUsernameOrEmail", ctx, "alice", "alice@example.com").Return(true, nil)

		_, err := f.svc.Register(ctx, validInput(t))
		requireStatus(t, err, http.StatusConflict)
		f.host.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})

	t.Run("avatar is required", func(t *testing.T) {
		f := newUserFixture(t)
		in := validInput(t)
		in.AvatarPath = ""
		f.users.On("ExistsByUsernameOrEmail", ctx, "alice", "alice@example.com").Return(false, nil)

		_, err := f.svc.Register(ctx, in)
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("avatar must be an image", func(t *testing.T) {
		f := newUserFixture(t)
		in := validInput(t)
		in.AvatarPath = writeText(t, "avatar.png")
		f.users.On("ExistsByUsernameOrEmail", ctx, "alice", "alice@example.com").Return(false, nil)

		_, err := f.svc.Register(ctx, in)
		requireStatus(t, err, http.StatusBadRequest)
		f.host.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})

	t.Run("cover upload failure removes the avatar", func(t *testing.T) {
		f := newUserFixture(t)
		in := validInput(t)
		f.users.On("ExistsByUsernameOrEmail", ctx, "alice", "alice@example.com").Return(false, nil)
		f.host.On("Upload", ctx, in.AvatarPath).Return(media.Asset{URL: "https://cdn/a.png"}, nil)
		f.host.On("Upload", ctx, in.CoverImagePath).Return(media.Asset{}, model.ErrUploadFailed)
		f.host.On("Delete", mock.Anything, "https://cdn/a.png").Return(nil)

		_, err := f.svc.Register(ctx, in)
		requireStatus(t, err, http.StatusBadRequest)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.host.AssertExpectations(t)
	})

	t.Run("duplicate on insert removes uploads", func(t *testing.T) {
		f := newUserFixture(t)
		in := validInput(t)
		f.users.On("ExistsByUsernameOrEmail", ctx, "alice", "alice@example.com").Return(false, nil)
		f.host.On("Upload", ctx, in.AvatarPath).Return(media.Asset{URL: "https://cdn/a.png"}, nil)
		f.host.On("Upload", ctx, in.CoverImagePath).Return(media.Asset{URL: "https://cdn/c.png"}, nil)
		f.users.On("Create", ctx, mock.Anything).Return(model.ErrDuplicateUser)
		f.host.On("Delete", mock.Anything, "https://cdn/a.png").Return(nil)
		f.host.On("Delete", mock.Anything, "https://cdn/c.png").Return(nil)

		_, err := f.svc.Register(ctx, in)
		requireStatus(t, err, http.StatusConflict)
		f.host.AssertExpectations(t)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	stored := model.User{ID: "u-1", Username: "alice", Email: "alice@example.com", PasswordHash: ""}

	t.Run("username or email is required", func(t *testing.T) {
		f := newUserFixture(t)
		_, _, err := f.svc.Login(ctx, model.LoginRequest{Password: "x"})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newUserFixture(t)
		f.users.On("FindByUsernameOrEmail", ctx, "nobody", "").Return(model.User{}, model.ErrUserNotFound)

		_, _, err := f.svc.Login(ctx, model.LoginRequest{Username: "Nobody", Password: "x"})
		requireStatus(t, err, http.StatusNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newUserFixture(t)
		user := stored
		user.PasswordHash = hashPassword(t, "right")
		f.users.On("FindByUsernameOrEmail", ctx, "", "alice@example.com").Return(user, nil)

		_, _, err := f.svc.Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "wrong"})
		requireStatus(t, err, http.StatusUnauthorized)
		f.tokens.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success issues and stores a pair", func(t *testing.T) {
		f := newUserFixture(t)
		user := stored
		user.PasswordHash = hashPassword(t, "right")
		f.users.On("FindByUsernameOrEmail", ctx, "alice", "").Return(user, nil)
		f.users.On("FindByID", ctx, "u-1").Return(user, nil)

		var saved string
		f.tokens.On("Store", ctx, "u-1", mock.Anything).
			Run(func(args mock.Arguments) { saved = args.String(2) }).
			Return(nil)

		got, pair, err := f.svc.Login(ctx, model.LoginRequest{Username: "alice", Password: "right"})
		require.NoError(t, err)
		assert.Equal(t, "u-1", got.ID)
		assert.Equal(t, saved, pair.RefreshToken)
		assert.NotEmpty(t, pair.AccessToken)
	})
}

func TestUserService_RefreshRotatesTokens(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)
	user := model.User{ID: "u-1", Username: "alice"}
	f.users.On("FindByID", ctx, "u-1").Return(user, nil)

	current := ""
	f.tokens.On("Store", ctx, "u-1", mock.Anything).
		Run(func(args mock.Arguments) { current = args.String(2) }).
		Return(nil)
	f.tokens.On("Swap", ctx, "u-1", mock.Anything, mock.Anything).
		Return(func(_ context.Context, _ string, presented string, next string) bool {
			if presented != current {
				return false
			}
			current = next
			return true
		}, nil)

	first, err := f.svc.tokens.IssuePair(ctx, "u-1")
	require.NoError(t, err)

	second, err := f.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, second.RefreshToken, current)

	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestUserService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture(t)
	f.tokens.On("Revoke", ctx, "u-1").Return(nil)

	require.NoError(t, f.svc.Logout(ctx, "u-1"))
	f.tokens.AssertExpectations(t)
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	user := model.User{ID: "u-1", Username: "alice"}

	t.Run("both passwords required", func(t *testing.T) {
		f := newUserFixture(t)
		err := f.svc.ChangePassword(ctx, "u-1", model.ChangePasswordRequest{OldPassword: "x"})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("wrong old password", func(t *testing.T) {
		f := newUserFixture(t)
		u := user
		u.PasswordHash = hashPassword(t, "old")
		f.users.On("FindByID", ctx, "u-1").Return(u, nil)

		err := f.svc.ChangePassword(ctx, "u-1", model.ChangePasswordRequest{OldPassword: "nope", NewPassword: "new"})
		requireStatus(t, err, http.StatusBadRequest)
		f.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stores a hash of the new password", func(t *testing.T) {
		f := newUserFixture(t)
		u := user
		u.PasswordHash = hashPassword(t, "old")
		f.users.On("FindByID", ctx, "u-1").Return(u, nil)
		f.users.On("UpdatePassword", ctx, "u-1", mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("new")) == nil
		})).Return(nil)

		require.NoError(t, f.svc.ChangePassword(ctx, "u-1", model.ChangePasswordRequest{OldPassword: "old", NewPassword: "new"}))
		f.users.AssertExpectations(t)
	})
}

func TestUserService_UpdateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("needs at least one field", func(t *testing.T) {
		f := newUserFixture(t)
		_, err := f.svc.UpdateAccount(ctx, "u-1", model.UpdateAccountRequest{FullName: " "})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		f := newUserFixture(t)
		_, err := f.svc.UpdateAccount(ctx, "u-1", model.UpdateAccountRequest{Email: "nope"})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("email taken", func(t *testing.T) {
		f := newUserFixture(t)
		f.users.On("UpdateAccount", ctx, "u-1", "", "bob@example.com").Return(model.User{}, model.ErrDuplicateUser)

		_, err := f.svc.UpdateAccount(ctx, "u-1", model.UpdateAccountRequest{Email: "bob@example.com"})
		requireStatus(t, err, http.StatusConflict)
	})

	t.Run("returns the updated user", func(t *testing.T) {
		f := newUserFixture(t)
		f.users.On("UpdateAccount", ctx, "u-1", "New Name", "").Return(model.User{ID: "u-1", FullName: "New Name"}, nil)

		user, err := f.svc.UpdateAccount(ctx, "u-1", model.UpdateAccountRequest{FullName: " New Name "})
		require.NoError(t, err)
		assert.Equal(t, "New Name", user.FullName)
	})
}

func TestUserService_UpdateAvatar(t *testing.T) {
	ctx := context.Background()
	previous := model.User{ID: "u-1", Avatar: "https://cdn/old.png", CoverImage: "https://cdn/cover.png"}

	t.Run("missing file", func(t *testing.T) {
		f := newUserFixture(t)
		_, err := f.svc.UpdateAvatar(ctx, "u-1", "")
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("upload failure leaves the user untouched", func(t *testing.T) {
		f := newUserFixture(t)
		path := writePNG(t, "a.png")
		f.users.On("FindByID", ctx, "u-1").Return(previous, nil)
		f.host.On("Upload", ctx, path).Return(media.Asset{}, model.ErrUploadFailed)

		_, err := f.svc.UpdateAvatar(ctx, "u-1", path)
		requireStatus(t, err, http.StatusBadRequest)
		f.users.AssertNotCalled(t, "UpdateAvatar", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("persist failure removes the new asset", func(t *testing.T) {
		f := newUserFixture(t)
		path := writePNG(t, "a.png")
		f.users.On("FindByID", ctx, "u-1").Return(previous, nil)
		f.host.On("Upload", ctx, path).Return(media.Asset{URL: "https://cdn/new.png"}, nil)
		f.users.On("UpdateAvatar", ctx, "u-1", "https://cdn/new.png").Return(model.User{}, errors.New("db down"))
		f.host.On("Delete", mock.Anything, "https://cdn/new.png").Return(nil)

		_, err := f.svc.UpdateAvatar(ctx, "u-1", path)
		requireStatus(t, err, http.StatusInternalServerError)
		f.host.AssertExpectations(t)
	})

	t.Run("success replaces and removes the old asset", func(t *testing.T) {
		f := newUserFixture(t)
		path := writePNG(t, "a.png")
		f.users.On("FindByID", ctx, "u-1").Return(previous, nil)
		f.host.On("Upload", ctx, path).Return(media.Asset{URL: "https://cdn/new.png"}, nil)
		f.users.On("UpdateAvatar", ctx, "u-1", "https://cdn/new.png").Return(model.User{ID: "u-1", Avatar: "https://cdn/new.png"}, nil)
		f.host.On("Delete", mock.Anything, "https://cdn/old.png").Return(nil)

		user, err := f.svc.UpdateAvatar(ctx, "u-1", path)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/new.png", user.Avatar)
		f.host.AssertExpectations(t)
	})
}

func TestUserService_UpdateCoverImageRejectsNonImage(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.UpdateCoverImage(context.Background(), "u-1", writeText(t, "cover.png"))
	requireStatus(t, err, http.StatusBadRequest)
	assert.True(t, strings.Contains(err.Error(), "coverImage"))
}
