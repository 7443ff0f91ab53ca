package jwt_test

import (
	"fleet/config"
	"fleet/infras/jwt"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secret = "test-secret"
	issuer = "identity"
)

func sign(t *testing.T, method gojwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()

	token, err := gojwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)

	return token
}

func claims(expiresIn time.Duration) jwt.Claims {
	now := time.Now()

	return jwt.Claims{
		UserID: "user-1",
		Role:   "staff",
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
}

func TestValidateToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = secret
	cfg.JWT.Issuer = issuer

	service := jwt.New(cfg)

	missingRole := claims(time.Hour)
	missingRole.Role = ""

	foreign := claims(time.Hour)
	foreign.Issuer = "someone-else"

	noExpiry := claims(time.Hour)
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:  "valid token",
			token: sign(t, gojwt.SigningMethodHS256, []byte(secret), claims(time.Hour)),
		},
		{
			name:  "HS512 is accepted",
			token: sign(t, gojwt.SigningMethodHS512, []byte(secret), claims(time.Hour)),
		},
		{
			name:    "expired token",
			token:   sign(t, gojwt.SigningMethodHS256, []byte(secret), claims(-time.Minute)),
			wantErr: jwt.ErrExpiredToken,
		},
		{
			name:    "token without expiry",
			token:   sign(t, gojwt.SigningMethodHS256, []byte(secret), noExpiry),
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "wrong secret",
			token:   sign(t, gojwt.SigningMethodHS256, []byte("other"), claims(time.Hour)),
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "unsigned token",
			token:   sign(t, gojwt.SigningMethodNone, gojwt.UnsafeAllowNoneSignatureType, claims(time.Hour)),
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "foreign issuer",
			token:   sign(t, gojwt.SigningMethodHS256, []byte(secret), foreign),
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "missing role",
			token:   sign(t, gojwt.SigningMethodHS256, []byte(secret), missingRole),
			wantErr: jwt.ErrInvalidClaim,
		},
		{
			name:    "garbage",
			token:   "not-a-token",
			wantErr: jwt.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.ValidateToken(tt.token)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "user-1", got.UserID)
			assert.Equal(t, "staff", got.Role)
		})
	}
}

func TestValidateToken_Leeway(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = secret
	cfg.JWT.LeewaySeconds = 60

	_, err := jwt.New(cfg).ValidateToken(sign(t, gojwt.SigningMethodHS256, []byte(secret), claims(-10*time.Second)))

	require.NoError(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "bearer abc.def", want: "abc.def"},
		{header: "  Bearer   abc.def ", want: "abc.def"},
		{header: "", wantErr: true},
		{header: "Basic abc", wantErr: true},
		{header: "Bearer ", wantErr: true},
		{header: "Bearer", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := jwt.ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				require.ErrorIs(t, err, jwt.ErrMissingBearer)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
