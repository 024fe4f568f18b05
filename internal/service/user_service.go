package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-vidtube/internal/event"
	"go-vidtube/internal/metrics"
	"go-vidtube/internal/model"
	"go-vidtube/internal/util"
	"go-vidtube/pkg/apierror"
)

var errEmptyAsset = errors.New("media host returned an empty asset")

type UserService struct {
	users        UserStore
	tokens       *TokenService
	media        MediaHost
	bus          event.Bus
	passwordCost int
}

func NewUserService(users UserStore, tokens *TokenService, media MediaHost, bus event.Bus) *UserService {
	return &UserService{
		users:        users,
		tokens:       tokens,
		media:        media,
		bus:          bus,
		passwordCost: 12,
	}
}

// SetPasswordCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *UserService) SetPasswordCost(cost int) {
	s.passwordCost = cost
}

func (s *UserService) Register(ctx context.Context, in model.RegisterInput) (model.User, error) {
	if err := util.RequireFields(
		util.Field{Name: "fullName", Value: in.FullName},
		util.Field{Name: "email", Value: in.Email},
		util.Field{Name: "username", Value: in.Username},
		util.Field{Name: "password", Value: in.Password},
	); err != nil {
		return model.User{}, err
	}

	email := strings.TrimSpace(in.Email)
	if err := util.ValidateEmail(email); err != nil {
		return model.User{}, err
	}

	username := strings.ToLower(strings.TrimSpace(in.Username))

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return model.User{}, apierror.Internal("Something went wrong while registering the user", err)
	}
	if exists {
		return model.User{}, apierror.Conflict("User with email or username already exists")
	}

	if in.AvatarPath == "" {
		return model.User{}, apierror.BadRequest("Avatar file is required", "avatar")
	}
	if _, err := util.InspectImage(in.AvatarPath, "avatar"); err != nil {
		return model.User{}, err
	}
	if in.CoverImagePath != "" {
		if _, err := util.InspectImage(in.CoverImagePath, "coverImage"); err != nil {
			return model.User{}, err
		}
	}

	avatar, err := upload(ctx, s.media, in.AvatarPath)
	if err != nil {
		return model.User{}, apierror.BadRequest("Avatar file is required", "avatar upload failed").WithCause(err)
	}

	var coverURL string
	if in.CoverImagePath != "" {
		cover, err := upload(ctx, s.media, in.CoverImagePath)
		if err != nil {
			discard(ctx, s.media, avatar.URL)
			return model.User{}, apierror.BadRequest("Cover image upload failed", "coverImage").WithCause(err)
		}
		coverURL = cover.URL
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.passwordCost)
	if err != nil {
		discard(ctx, s.media, avatar.URL, coverURL)
		return model.User{}, apierror.Internal("Something went wrong while registering the user", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		Avatar:       avatar.URL,
		CoverImage:   coverURL,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		discard(ctx, s.media, avatar.URL, coverURL)
		if errors.Is(err, model.ErrDuplicateUser) {
			return model.User{}, apierror.Conflict("User with email or username already exists")
		}
		return model.User{}, apierror.Internal("Something went wrong while registering the user", err)
	}

	created, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return model.User{}, apierror.Internal("Something went wrong while registering the user", err)
	}

	slog.Info("user registered", "user_id", created.ID, "username", created.Username)
	s.bus.Publish(event.New(event.TypeUserRegistered, created.ID, map[string]string{
		"userId":   created.ID,
		"username": created.Username,
	}))

	return created, nil
}

func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (model.User, model.TokenPair, error) {
	user, pair, err := s.login(ctx, req)
	metrics.ObserveAuth("login", err)
	return user, pair, err
}

func (s *UserService) login(ctx context.Context, req model.LoginRequest) (model.User, model.TokenPair, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.TrimSpace(req.Email)

	if username == "" && email == "" {
		return model.User{}, model.TokenPair{}, apierror.BadRequest("Username or email is required", "username", "email")
	}
	if req.Password == "" {
		return model.User{}, model.TokenPair{}, apierror.BadRequest("Password is required", "password")
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, model.TokenPair{}, apierror.NotFound("User does not exist")
		}
		return model.User{}, model.TokenPair{}, apierror.Internal("Something went wrong while logging in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.User{}, model.TokenPair{}, apierror.Unauthorized("Invalid user credentials")
	}

	pair, err := s.tokens.IssuePair(ctx, user.ID)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	s.bus.Publish(event.New(event.TypeUserLoggedIn, user.ID, map[string]string{"userId": user.ID}))

	return user, pair, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return err
	}

	s.bus.Publish(event.New(event.TypeUserLoggedOut, userID, map[string]string{"userId": userID}))
	return nil
}

// Refresh rotates the pair. The presented refresh token stops working.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	pair, err := s.tokens.Rotate(ctx, refreshToken)
	metrics.ObserveAuth("refresh", err)
	return pair, err
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, req model.ChangePasswordRequest) error {
	if err := util.RequireFields(
		util.Field{Name: "oldPassword", Value: req.OldPassword},
		util.Field{Name: "newPassword", Value: req.NewPassword},
	); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return s.mapUserError(err, "Something went wrong while changing the password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return apierror.BadRequest("Invalid old password", "oldPassword")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.passwordCost)
	if err != nil {
		return apierror.Internal("Something went wrong while changing the password", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return s.mapUserError(err, "Something went wrong while changing the password")
	}

	slog.Info("password changed", "user_id", userID)
	return nil
}

func (s *UserService) Current(ctx context.Context, userID string) (model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, s.mapUserError(err, "Something went wrong while loading the user")
	}
	return user, nil
}

func (s *UserService) UpdateAccount(ctx context.Context, userID string, req model.UpdateAccountRequest) (model.User, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)

	if fullName == "" && email == "" {
		return model.User{}, apierror.BadRequest("fullName or email is required", "fullName", "email")
	}
	if email != "" {
		if err := util.ValidateEmail(email); err != nil {
			return model.User{}, err
		}
	}

	user, err := s.users.UpdateAccount(ctx, userID, fullName, email)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateUser) {
			return model.User{}, apierror.Conflict("Email is already in use")
		}
		return model.User{}, s.mapUserError(err, "Something went wrong while updating the account")
	}

	s.publishUserUpdated(user.ID, "account")
	return user, nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID string, localPath string) (model.User, error) {
	return s.replaceImage(ctx, userID, localPath, "avatar", s.users.UpdateAvatar)
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID string, localPath string) (model.User, error) {
	return s.replaceImage(ctx, userID, localPath, "coverImage", s.users.UpdateCoverImage)
}

func (s *UserService) replaceImage(
	ctx context.Context,
	userID string,
	localPath string,
	field string,
	persist func(ctx context.Context, id string, url string) (model.User, error),
) (model.User, error) {
	if localPath == "" {
		return model.User{}, apierror.BadRequest(field+" file is missing", field)
	}
	if _, err := util.InspectImage(localPath, field); err != nil {
		return model.User{}, err
	}

	previous, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, s.mapUserError(err, "Something went wrong while updating the "+field)
	}

	asset, err := upload(ctx, s.media, localPath)
	if err != nil {
		return model.User{}, apierror.BadRequest("Error while uploading "+field, field).WithCause(err)
	}

	user, err := persist(ctx, userID, asset.URL)
	if err != nil {
		discard(ctx, s.media, asset.URL)
		return model.User{}, s.mapUserError(err, "Something went wrong while updating the "+field)
	}

	old := previous.Avatar
	if field == "coverImage" {
		old = previous.CoverImage
	}
	if old != "" && old != asset.URL {
		discard(ctx, s.media, old)
	}

	s.publishUserUpdated(user.ID, field)
	return user, nil
}

func (s *UserService) publishUserUpdated(userID string, field string) {
	s.bus.Publish(event.New(event.TypeUserUpdated, userID, map[string]string{
		"userId": userID,
		"field":  field,
	}))
}

// mapUserError covers the case where the authenticated user vanished between
// the auth check and the write.
func (s *UserService) mapUserError(err error, internalMessage string) error {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, model.ErrUserNotFound) {
		return apierror.NotFound("User does not exist")
	}
	return apierror.Internal(internalMessage, err)
}
