package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/honeynil/PetAdoptService/internal/infrastructure/auth"
	"github.com/honeynil/PetAdoptService/internal/infrastructure/kafka"
	"github.com/honeynil/PetAdoptService/internal/infrastructure/redis"
	"github.com/honeynil/PetAdoptService/internal/models"
	"github.com/honeynil/PetAdoptService/internal/repository"
	pkgerrors "github.com/honeynil/PetAdoptService/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
}

// Profile is what /auth/users/me shows about the caller.
type Profile struct {
	User      *models.User
	Wallet    *models.Wallet
	Adoptions []models.Adoption
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, userID int64) error
	Me(ctx context.Context, userID int64) (*Profile, error)
}

type authService struct {
	userRepo     repository.UserRepository
	walletRepo   repository.WalletRepository
	adoptionRepo repository.AdoptionRepository
	redisClient  redis.RedisClient
	events       *EventPublisher
	jwtSecret    string
	tokenTTL     time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	adoptionRepo repository.AdoptionRepository,
	redisClient redis.RedisClient,
	events *EventPublisher,
	jwtSecret string,
	tokenTTL time.Duration,
) *authService {
	return &authService{
		userRepo:     userRepo,
		walletRepo:   walletRepo,
		adoptionRepo: adoptionRepo,
		redisClient:  redisClient,
		events:       events,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	ctx, span := otel.Tracer("auth-service").Start(ctx, "Register")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		span.SetStatus(codes.Error, "invalid email")
		return nil, pkgerrors.ErrInvalidInput.Withf("enter a valid email address")
	}
	if len(in.Password) < minPasswordLength {
		span.SetStatus(codes.Error, "password too short")
		return nil, pkgerrors.ErrInvalidInput.Withf("password must be at least %d characters", minPasswordLength)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if existing != nil {
		slog.Warn("email already registered", "email", email, "existing_id", existing.ID)
		return nil, pkgerrors.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, pkgerrors.ErrUserNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user check failed")
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		slog.Error("failed to hash password", "email", email, "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		Address:      in.Address,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user creation failed")
		return nil, err
	}

	s.events.Publish(kafka.TopicUsers, user.ID, kafka.UserRegisteredEvent{
		EventType: "user_registered",
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	ctx, span := otel.Tracer("auth-service").Start(ctx, "Login")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrUserNotFound) {
			slog.Warn("login for unknown email", "email", email)
			return "", pkgerrors.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("invalid password", "user_id", user.ID)
		return "", pkgerrors.ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(s.jwtSecret, user.ID, user.IsStaff, s.tokenTTL)
	if err != nil {
		span.RecordError(err)
		slog.Error("failed to generate JWT", "user_id", user.ID, "error", err)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.redisClient.Set(ctx, redis.TokenKey(user.ID), token, s.tokenTTL); err != nil {
		span.RecordError(err)
		slog.Error("failed to store JWT", "user_id", user.ID, "error", err)
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	slog.Info("user logged in", "user_id", user.ID)
	return token, nil
}

func (s *authService) Logout(ctx context.Context, userID int64) error {
	ctx, span := otel.Tracer("auth-service").Start(ctx, "Logout")
	defer span.End()

	if err := s.redisClient.Del(ctx, redis.TokenKey(userID)); err != nil {
		span.RecordError(err)
		slog.Error("failed to revoke token", "user_id", userID, "error", err)
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	slog.Info("user logged out", "user_id", userID)
	return nil
}

func (s *authService) Me(ctx context.Context, userID int64) (*Profile, error) {
	ctx, span := otel.Tracer("auth-service").Start(ctx, "Me")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, pkgerrors.ErrWalletNotFound) {
		return nil, err
	}

	adoptions, err := s.adoptionRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := attachAdoptPets(ctx, s.adoptionRepo, adoptions); err != nil {
		return nil, err
	}

	return &Profile{User: user, Wallet: wallet, Adoptions: adoptions}, nil
}
