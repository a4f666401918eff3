package service

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/krkdev/contacts-api/internal/apperr"
	"github.com/krkdev/contacts-api/internal/model"
	"github.com/krkdev/contacts-api/internal/repository"
	"github.com/krkdev/contacts-api/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// Client-facing messages.
const (
	MsgNotAuthorized         = "Not authorized"
	MsgEmailInUse            = "Email in use"
	MsgInvalidCredentials    = "Email or password is wrong"
	MsgEmailNotVerified      = "Please verify your email"
	MsgUserNotFound          = "User not found"
	MsgVerificationSucceeded = "Verification successful"
	MsgAlreadyVerified       = "Verification has already been passed"
	MsgVerificationSent      = "Verification email sent"
)

const passwordHashCost = 10

type AuthService struct {
	userRepository    repository.UserRepository
	sessionRepository repository.SessionRepository
	tokenRepository   repository.TokenRepository
	emailService      *EmailService
	jwtSecret         string
	jwtExpiry         time.Duration
	verifyExpiry      time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	sessionRepository repository.SessionRepository,
	tokenRepository repository.TokenRepository,
	emailService *EmailService,
	jwtSecret string,
	jwtExpiry time.Duration,
	verifyExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:    userRepository,
		sessionRepository: sessionRepository,
		tokenRepository:   tokenRepository,
		emailService:      emailService,
		jwtSecret:         jwtSecret,
		jwtExpiry:         jwtExpiry,
		verifyExpiry:      verifyExpiry,
	}
}

// Signup registers an unverified user and sends the verification email.
// A failed send is logged and does not fail the signup.
func (s *AuthService) Signup(ctx context.Context, creds validation.Credentials) (*model.User, error) {
	_, err := s.userRepository.ByEmail(ctx, creds.Email)
	if err == nil {
		return nil, apperr.Conflict(MsgEmailInUse)
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.HashPassword(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        creds.Email,
		PasswordHash: hash,
		Subscription: model.SubscriptionStarter,
		AvatarURL:    GravatarURL(creds.Email),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.userRepository.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, apperr.Conflict(MsgEmailInUse)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueVerificationToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.sendVerificationEmail(ctx, user, token)

	slog.Info("user signed up", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials and opens a new session, closing any other
// session of the user. Unverified users are rejected before a token exists.
func (s *AuthService) Login(ctx context.Context, creds validation.Credentials) (string, *model.User, error) {
	user, err := s.userRepository.ByEmail(ctx, creds.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", nil, apperr.Unauthorized(MsgInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	if s.ComparePassword(creds.Password, user.PasswordHash) != nil {
		return "", nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	if !user.Verified {
		return "", nil, apperr.Unauthorized(MsgEmailNotVerified)
	}

	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	err = s.sessionRepository.Replace(ctx, &model.Session{
		UserID:    user.ID,
		TokenHash: HashToken(token),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	slog.Info("user logged in", "user_id", user.ID)
	return token, user, nil
}

// Logout ends the session identified by tokenHash. Ending an already ended
// session is not an error.
func (s *AuthService) Logout(ctx context.Context, tokenHash string) error {
	err := s.sessionRepository.DeleteByTokenHash(ctx, tokenHash)
	if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to its user. The token must carry a
// valid signature, be unexpired and match the user's live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, string, error) {
	claims, err := s.VerifyJWT(token)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindUnauthorized, MsgNotAuthorized, err)
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, "", apperr.Unauthorized(MsgNotAuthorized)
	}

	user, err := s.userRepository.ByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", apperr.Unauthorized(MsgNotAuthorized)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	tokenHash := HashToken(token)
	session, err := s.sessionRepository.ByTokenHash(ctx, tokenHash)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, "", apperr.Unauthorized(MsgNotAuthorized)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get session: %w", err)
	}

	if session.UserID != user.ID || session.IsExpired() {
		return nil, "", apperr.Unauthorized(MsgNotAuthorized)
	}

	return user, tokenHash, nil
}

// Verify redeems a verification token. Unknown, used and expired tokens all
// report the same not-found error.
func (s *AuthService) Verify(ctx context.Context, token string) error {
	t, err := s.tokenRepository.ConsumeToken(ctx, token, model.TokenTypeEmailVerify)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to consume token: %w", err)
	}

	err = s.userRepository.MarkVerified(ctx, t.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	slog.Info("email verified", "user_id", t.UserID)
	return nil
}

// ResendVerification replaces the user's pending verification token and
// sends a new email.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepository.ByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.Verified {
		return apperr.Validation(MsgAlreadyVerified)
	}

	err = s.tokenRepository.DeleteByUserAndType(ctx, user.ID, model.TokenTypeEmailVerify)
	if err != nil {
		return fmt.Errorf("failed to delete old tokens: %w", err)
	}

	token, err := s.issueVerificationToken(ctx, user.ID)
	if err != nil {
		return err
	}

	s.sendVerificationEmail(ctx, user, token)
	return nil
}

func (s *AuthService) issueVerificationToken(ctx context.Context, userID string) (string, error) {
	token := s.GenerateVerificationToken()
	err := s.tokenRepository.Create(ctx, &model.Token{
		UserID:    userID,
		Type:      model.TokenTypeEmailVerify,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.verifyExpiry),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create verification token: %w", err)
	}
	return token, nil
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, user *model.User, token string) {
	err := s.emailService.SendVerificationEmail(ctx, user.Email, token)
	if err != nil {
		slog.Error("failed to send verification email", "error", err, "user_id", user.ID)
	}
}

// GenerateVerificationToken returns a random opaque token.
func (s *AuthService) GenerateVerificationToken() string {
	return uuid.New().String()
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateJWT signs a session token for user and returns its expiry.
func (s *AuthService) GenerateJWT(user *model.User) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.jwtExpiry)

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
		"jti":     uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// HashToken is the session lookup key for a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GravatarURL is the default avatar for an email address.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=250&d=identicon", hex.EncodeToString(sum[:]))
}
