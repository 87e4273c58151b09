package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"teamboard/model"
	"teamboard/repository"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// ProfilePatch updates the caller's profile. Nil fields are kept; empty name,
// email and password are kept as well.
type ProfilePatch struct {
	Name     *string
	Email    *string
	Password *string
	Bio      *string
	Avatar   *string
}

type UserService struct {
	users       repository.UserRepository
	jwt         *JWTService
	directory   *UserDirectory
	adminEmails map[string]struct{}
	now         func() time.Time
}

func NewUserService(users repository.UserRepository, jwt *JWTService, directory *UserDirectory, adminEmails []string) *UserService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &UserService{
		users:       users,
		jwt:         jwt,
		directory:   directory,
		adminEmails: admins,
		now:         time.Now,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (model.User, model.TokenPair, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.User{}, model.TokenPair{}, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	role := model.RoleUser
	if _, ok := s.adminEmails[email]; ok {
		role = model.RoleAdmin
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	user := model.User{
		UserID:    uuid.New().String(),
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, model.TokenPair{}, fmt.Errorf("%w: email already registered", model.ErrConflict)
		}
		log.Printf("[user] Error creating user %s: %v", email, err)
		return model.User{}, model.TokenPair{}, fmt.Errorf("%w: create user: %v", model.ErrStoreFailure, err)
	}
	log.Printf("[user] Registered user %s (%s)", user.UserID, role)

	pair, err := s.jwt.CreateTokenPair(user)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}
	return user, pair, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (model.User, model.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, model.TokenPair{}, fmt.Errorf("%w: invalid email or password", model.ErrUnauthenticated)
		}
		return model.User{}, model.TokenPair{}, fmt.Errorf("%w: load user: %v", model.ErrStoreFailure, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return model.User{}, model.TokenPair{}, fmt.Errorf("%w: invalid email or password", model.ErrUnauthenticated)
	}

	pair, err := s.jwt.CreateTokenPair(user)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh issues a new token pair for the user named by a valid refresh token.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}
	user, err := s.authenticated(ctx, claims.UserID)
	if err != nil {
		return model.TokenPair{}, err
	}
	return s.jwt.CreateTokenPair(user)
}

// CurrentUser resolves an access token to the identity of a user that still
// exists. The role comes from the stored user, not from the token.
func (s *UserService) CurrentUser(ctx context.Context, accessToken string) (model.Identity, error) {
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return model.Identity{}, err
	}
	user, err := s.authenticated(ctx, claims.UserID)
	if err != nil {
		return model.Identity{}, err
	}
	return user.Identity(), nil
}

func (s *UserService) Profile(ctx context.Context, actor model.Identity) (model.User, error) {
	return s.GetUser(ctx, actor.UserID)
}

func (s *UserService) UpdateProfile(ctx context.Context, actor model.Identity, patch ProfilePatch) (model.User, error) {
	user, err := s.GetUser(ctx, actor.UserID)
	if err != nil {
		return model.User{}, err
	}

	if v := trimmed(patch.Name); v != "" {
		user.Name = v
	}
	if v := trimmed(patch.Email); v != "" {
		email, err := normalizeEmail(v)
		if err != nil {
			return model.User{}, err
		}
		user.Email = email
	}
	if patch.Password != nil && *patch.Password != "" {
		hash, err := hashPassword(*patch.Password)
		if err != nil {
			return model.User{}, err
		}
		user.Password = hash
	}
	if patch.Bio != nil {
		user.Bio = strings.TrimSpace(*patch.Bio)
	}
	if patch.Avatar != nil {
		user.Avatar = strings.TrimSpace(*patch.Avatar)
	}

	return s.save(ctx, user)
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", model.ErrStoreFailure, err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
		}
		return model.User{}, fmt.Errorf("%w: load user: %v", model.ErrStoreFailure, err)
	}
	return user, nil
}

func (s *UserService) SetRole(ctx context.Context, id, role string) (model.User, error) {
	parsed, err := model.ParseRole(role)
	if err != nil {
		return model.User{}, err
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	user.Role = parsed
	updated, err := s.save(ctx, user)
	if err != nil {
		return model.User{}, err
	}
	log.Printf("[user] Role of %s set to %s", id, parsed)
	return updated, nil
}

func (s *UserService) save(ctx context.Context, user model.User) (model.User, error) {
	user.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, fmt.Errorf("%w: email already registered", model.ErrConflict)
		}
		return model.User{}, fmt.Errorf("%w: save user: %v", model.ErrStoreFailure, err)
	}
	s.directory.Invalidate(ctx, user.UserID)
	return user, nil
}

func (s *UserService) authenticated(ctx context.Context, id string) (model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, fmt.Errorf("%w: user no longer exists", model.ErrUnauthenticated)
		}
		return model.User{}, fmt.Errorf("%w: load user: %v", model.ErrStoreFailure, err)
	}
	return user, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email %q", model.ErrValidation, raw)
	}
	return email, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return "", fmt.Errorf("%w: password must be %d to %d characters", model.ErrValidation, minPasswordLength, maxPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
