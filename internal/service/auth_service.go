package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"contractpay/internal/model"
	"contractpay/internal/mq"
	"contractpay/internal/util"
)

var (
	ErrEmailTaken         = errors.New("email already exists")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserStore is the persistence the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// EventPublisher publishes a domain event under a routing key.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type AuthService struct {
	users     UserStore
	producer  EventPublisher
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(users UserStore, producer EventPublisher, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		producer:  producer,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

type RegisterInput struct {
	Username string
	Password string
	Email    string
	FullName string
	UserType string
}

// Register creates a new user and publishes `user.registered`.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if existing, err := s.users.FindByEmail(ctx, in.Email); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}
	if existing, err := s.users.FindByUsername(ctx, in.Username); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	} else if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	userType := in.UserType
	if userType == "" {
		userType = model.UserTypeFreelancer
	}

	u := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		UserType:     userType,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	payload := mq.UserRegisteredPayload{
		UserID:   u.ID,
		Email:    u.Email,
		UserType: u.UserType,
	}
	if err := s.producer.Publish(mq.RoutingKeyUserRegistered, payload); err != nil {
		// The account exists either way; the event is best effort.
		s.logger.Warn("publish user.registered failed", zap.Int("user_id", u.ID), zap.Error(err))
	}

	return u, nil
}

// Login checks user credentials and returns the user with a signed JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(u.ID, u.UserType, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}
