package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"helpdesk/internal/feature/auth/domain/entity"
)

// dummyHash はユーザーが存在しない場合にも bcrypt 比較を行うためのダミーハッシュです。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// TokenService signs and parses the session cookie value.
type TokenService interface {
	GenerateToken(userID uint, email, sessionID string) (string, error)
	ParseToken(token string) (userID uint, sessionID string, err error)
}

// ClientInfo describes the client a session is created for.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// Options tunes hashing cost and session lifetime.
type Options struct {
	BcryptCost int
	SessionTTL time.Duration
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenService
	opts     Options
	now      func() time.Time
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, sessions SessionRepository, tokens TokenService, opts Options) *authUsecase {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	return &authUsecase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		opts:     opts,
		now:      time.Now,
	}
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録します。
// 既存のメールアドレスの場合は ErrEmailAlreadyExists を返し、ユーザー数は変わりません。
func (u *authUsecase) Register(ctx context.Context, email, password string) (*entity.User, error) {
	if email == "" || password == "" {
		return nil, ErrValidation
	}

	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{Email: email, Password: string(hashed)}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Verify はメールアドレスとパスワードを検証し、一致したユーザーを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Verify(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, email)

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.Password
	}

	// 第1引数はハッシュ化パスワード、第2引数は平文パスワード
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login verifies the credentials, stores a new session and returns the
// signed cookie value for it.
func (u *authUsecase) Login(ctx context.Context, email, password string, client ClientInfo) (string, error) {
	user, err := u.Verify(ctx, email, password)
	if err != nil {
		return "", err
	}

	now := u.now()
	session := &entity.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(u.opts.SessionTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	token, err := u.tokens.GenerateToken(user.ID, user.Email, session.ID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a cookie value to its live session.
func (u *authUsecase) Authenticate(ctx context.Context, token string) (*entity.Session, error) {
	userID, sessionID, err := u.tokens.ParseToken(token)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	session, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	if !session.IsValid() || session.UserID != userID {
		return nil, ErrSessionInvalid
	}
	return session, nil
}

// Logout revokes the session. An already missing session is not an error.
func (u *authUsecase) Logout(ctx context.Context, sessionID string) error {
	if err := u.sessions.Revoke(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
