package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken token이 JWT 형식이 아님
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken 만료된 토큰
	ErrExpiredToken = errors.New("expired token")
)

// AccessClaims - 백엔드가 발급하는 액세스 토큰 페이로드.
// 콘솔은 서명 비밀키를 가지지 않으므로 검증은 서버 몫이고,
// 여기서는 만료/사용자 식별 정보만 읽는다.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id,omitempty"`
	LoginID  string `json:"login_id,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Inspect parses a bearer token WITHOUT verifying its signature.
// Signature verification happens server-side; the console only needs
// the claims to decide whether a stored token is worth presenting.
func Inspect(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// IsExpired reports whether the token's exp claim is in the past.
// Tokens without an exp claim are treated as live; the server will
// reject them if it disagrees.
func IsExpired(tokenString string) bool {
	claims, err := Inspect(tokenString)
	if err != nil {
		// Opaque tokens are passed through untouched
		return false
	}

	if claims.ExpiresAt == nil {
		return false
	}

	return claims.ExpiresAt.Before(time.Now())
}
