package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
)

var pgErr = errors.New("db error")

var userColumns = []string{"id", "email", "username", "password_hash", "full_name", "avatar_url", "created_at", "updated_at"}

func TestRegisterAndLogin(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now().Add(-time.Minute)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "anna@trailmates.app", "anna", pgxmock.AnyArg(), "Anna Keller", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(createdAt, createdAt))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("test-secret", mock)
	user, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "anna@trailmates.app",
		Username: "anna",
		Password: "ridge-walk-2026",
		FullName: "Anna Keller",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected user and tokens")
	}
	if tokens.AccessToken == tokens.RefreshToken {
		t.Fatalf("expected distinct access and refresh tokens")
	}

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("anna@trailmates.app").
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow(user.ID, user.Email, user.Username, user.PasswordHash, user.FullName, user.AvatarURL, createdAt, createdAt))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), user.ID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	_, loginTokens, err := svc.Login(context.Background(), LoginRequest{Email: "anna@trailmates.app", Password: "ridge-walk-2026"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginTokens.AccessToken == "" || loginTokens.TokenType != "Bearer" {
		t.Fatalf("expected login tokens")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService("test-secret", nil)
	cases := []RegisterRequest{
		{Email: "", Username: "anna", Password: "ridge-walk-2026"},
		{Email: "not-an-email", Username: "anna", Password: "ridge-walk-2026"},
		{Email: "anna@trailmates.app", Username: "anna", Password: "short"},
	}
	for _, req := range cases {
		_, _, err := svc.Register(context.Background(), req)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestRegisterDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pgconn.PgError{Code: "23505"})

	svc := NewService("test-secret", mock)
	_, _, err = svc.Register(context.Background(), RegisterRequest{Email: "anna@trailmates.app", Username: "anna", Password: "ridge-walk-2026"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterDBError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(pgErr)

	svc := NewService("test-secret", mock)
	_, _, err = svc.Register(context.Background(), RegisterRequest{Email: "anna@trailmates.app", Username: "anna", Password: "ridge-walk-2026"})
	if !errors.Is(err, pgErr) {
		t.Fatalf("expected db error, got %v", err)
	}
}

func TestRegisterHashError(t *testing.T) {
	oldHash := hashPasswordFn
	hashPasswordFn = func(_ []byte, _ int) ([]byte, error) {
		return nil, pgErr
	}
	defer func() { hashPasswordFn = oldHash }()

	svc := NewService("test-secret", nil)
	_, _, err := svc.Register(context.Background(), RegisterRequest{Email: "anna@trailmates.app", Username: "anna", Password: "ridge-walk-2026"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoginInvalidPassword(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("anna@trailmates.app").
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow("user-1", "anna@trailmates.app", "anna", string(hash), "", "", time.Now(), time.Now()))

	svc := NewService("test-secret", mock)
	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "anna@trailmates.app", Password: "wrong"})
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM users WHERE email = \$1`).WithArgs("ghost@trailmates.app").WillReturnError(pgx.ErrNoRows)

	svc := NewService("test-secret", mock)
	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@trailmates.app", Password: "whatever"})
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM users WHERE email = \$1`).WillReturnError(pgErr)

	svc := NewService("test-secret", mock)
	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "anna@trailmates.app", Password: "ridge-walk-2026"})
	if !errors.Is(err, pgErr) {
		t.Fatalf("expected db error, got %v", err)
	}
}

func TestOrganizer(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow("user-1", "anna@trailmates.app", "anna", "hash", "", "https://img/anna.jpg", time.Now(), time.Now()))
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService("test-secret", mock)
	org, err := svc.Organizer(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("organizer: %v", err)
	}
	if org.Name != "anna" || org.Avatar != "https://img/anna.jpg" {
		t.Fatalf("unexpected organizer %+v", org)
	}

	if _, err := svc.Organizer(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestValidateRefreshToken(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("test-secret", mock)
	tokens, err := svc.GenerateTokens(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).AddRow("user-1", time.Now().Add(5*time.Minute)))

	userID, err := svc.ValidateRefreshToken(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("validate refresh: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("unexpected user_id: %s", userID)
	}
}

func TestValidateRefreshTokenExpired(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService("test-secret", mock)
	refresh, err := svc.signToken("user-2", refreshTokenTTL)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(refresh).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).AddRow("user-2", time.Now().Add(-time.Minute)))

	if _, err := svc.ValidateRefreshToken(context.Background(), refresh); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestValidateRefreshTokenLookupError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService("test-secret", mock)
	refresh, _ := svc.signToken("user-3", refreshTokenTTL)

	mock.ExpectQuery(`SELECT user_id, expires_at`).WithArgs(refresh).WillReturnError(pgErr)

	if _, err := svc.ValidateRefreshToken(context.Background(), refresh); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGenerateTokensSaveRefreshError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO refresh_tokens`).WillReturnError(pgErr)

	svc := NewService("test-secret", mock)
	if _, err := svc.GenerateTokens(context.Background(), "user-1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGenerateTokensSignError(t *testing.T) {
	oldSign := signTokenFn
	call := 0
	signTokenFn = func(_ *Service, _ string, _ time.Duration) (string, error) {
		call++
		if call == 2 {
			return "", pgErr
		}
		return "token", nil
	}
	defer func() { signTokenFn = oldSign }()

	svc := NewService("test-secret", nil)
	if _, err := svc.GenerateTokens(context.Background(), "user-1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseTokenInvalid(t *testing.T) {
	oldParse := parseWithClaimsFn
	parseWithClaimsFn = func(_ string, _ jwt.Claims, _ jwt.Keyfunc, _ ...jwt.ParserOption) (*jwt.Token, error) {
		return &jwt.Token{Valid: false, Claims: &Claims{}}, nil
	}
	defer func() { parseWithClaimsFn = oldParse }()

	svc := NewService("test-secret", nil)
	if _, err := svc.parseToken("token"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateAccessTokenInvalid(t *testing.T) {
	svc := NewService("test-secret", nil)
	if _, err := svc.ValidateAccessToken("invalid-token"); err == nil {
		t.Fatalf("expected error")
	}

	other := NewService("other-secret", nil)
	token, _ := other.signToken("user-1", accessTokenTTL)
	if _, err := svc.ValidateAccessToken(token); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestDisplayName(t *testing.T) {
	if (User{Username: "anna", FullName: "Anna Keller"}).DisplayName() != "Anna Keller" {
		t.Fatalf("expected full name")
	}
	if (User{Username: "anna"}).DisplayName() != "anna" {
		t.Fatalf("expected username fallback")
	}
}
