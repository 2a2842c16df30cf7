package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"public-complaint-api/models"
	"public-complaint-api/utils"
)

// Claims is the JWT payload issued on login.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts verified claims into the requester identity.
func (c *Claims) Actor() Actor {
	return Actor{UserID: c.UserID, Role: c.Role}
}

type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	NIK                  string `json:"nik" validate:"required,len=16,nik"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	Phone                string `json:"phone" validate:"omitempty,max=20"`
	Address              string `json:"address"`
	BirthDate            string `json:"birth_date" validate:"omitempty,date_ymd"`
	Job                  string `json:"job" validate:"omitempty,max=255"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	Name      string `json:"name" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Address   string `json:"address"`
	BirthDate string `json:"birth_date" validate:"omitempty,date_ymd"`
	Job       string `json:"job" validate:"omitempty,max=255"`
}

type PasswordInput struct {
	CurrentPassword      string `json:"current_password" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// TokenRevoker remembers logged-out token ids until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisTokenRevoker stores revoked token ids as expiring keys.
type RedisTokenRevoker struct {
	client redis.Cmdable
}

func NewRedisTokenRevoker(client redis.Cmdable) *RedisTokenRevoker {
	return &RedisTokenRevoker{client: client}
}

func revokedKey(jti string) string { return "auth:revoked:" + jti }

func (r *RedisTokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKey(jti), 1, ttl).Err()
}

func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AuthService issues and verifies bearer tokens and manages the caller's account.
type AuthService struct {
	users   UserStore
	secret  []byte
	ttl     time.Duration
	revoker TokenRevoker
	now     func() time.Time
}

func NewAuthService(users UserStore, secret string, ttl time.Duration, revoker TokenRevoker) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		users:   users,
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
		now:     time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	verr := &ValidationError{}
	verr.Merge(utils.ValidateStruct(in))

	if in.Email != "" {
		taken, err := s.users.ExistsByEmail(ctx, in.Email, 0)
		if err != nil {
			return nil, "", storageError("check email", err)
		}
		if taken {
			verr.Add("email", "Email sudah terdaftar.")
		}
	}
	if in.NIK != "" {
		taken, err := s.users.ExistsByNIK(ctx, in.NIK, 0)
		if err != nil {
			return nil, "", storageError("check nik", err)
		}
		if taken {
			verr.Add("nik", "NIK sudah terdaftar.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:      strings.TrimSpace(in.Name),
		NIK:       in.NIK,
		Email:     in.Email,
		Password:  string(hash),
		Phone:     optionalString(in.Phone),
		Address:   optionalString(in.Address),
		BirthDate: parseDate(in.BirthDate),
		Job:       optionalString(in.Job),
		Role:      models.RoleUser,
		IsActive:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, "", NewValidationError("email", "Email atau NIK sudah terdaftar.")
		}
		return nil, "", storageError("create user", err)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	log.Printf("[auth] user %d registered", user.ID)
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	verr := &ValidationError{}
	verr.Merge(utils.ValidateStruct(in))
	if err := verr.OrNil(); err != nil {
		return nil, "", err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrUnauthenticated
		}
		return nil, "", storageError("find user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, "", ErrUnauthenticated
	}
	if !user.IsActive {
		return nil, "", ErrUnauthenticated
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) issue(user *models.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a bearer token and rejects revoked or inactive accounts.
func (s *AuthService) ParseToken(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}

	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			log.Printf("[auth] revocation lookup failed: %v", err)
		} else if revoked {
			return nil, ErrUnauthenticated
		}
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrUnauthenticated
	}
	// role changes take effect without re-login
	claims.Role = user.Role
	return claims, nil
}

// Logout revokes the token until its natural expiry. Without a revoker it is a no-op.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if s.revoker == nil || claims == nil || claims.ID == "" {
		return nil
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return storageError("revoke token", err)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, actor Actor) (*models.User, error) {
	if err := RequireUser(actor); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, storageError("find user", err)
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, actor Actor, in ProfileInput) (*models.User, error) {
	user, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	verr := &ValidationError{}
	verr.Merge(utils.ValidateStruct(in))
	if in.Email != "" && in.Email != user.Email {
		taken, err := s.users.ExistsByEmail(ctx, in.Email, user.ID)
		if err != nil {
			return nil, storageError("check email", err)
		}
		if taken {
			verr.Add("email", "Email sudah terdaftar.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Email = in.Email
	user.Phone = optionalString(in.Phone)
	user.Address = optionalString(in.Address)
	user.BirthDate = parseDate(in.BirthDate)
	user.Job = optionalString(in.Job)
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, NewValidationError("email", "Email sudah terdaftar.")
		}
		return nil, storageError("update user", err)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, actor Actor, in PasswordInput) error {
	user, err := s.Me(ctx, actor)
	if err != nil {
		return err
	}

	verr := &ValidationError{}
	verr.Merge(utils.ValidateStruct(in))
	if in.CurrentPassword != "" && bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
		verr.Add("current_password", "Password saat ini tidak sesuai.")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return storageError("update password", err)
	}
	return nil
}

// HashPassword is used by the seeder.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil
	}
	return &t
}
