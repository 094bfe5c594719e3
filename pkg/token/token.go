package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleType set member role
type RoleType string

const (
	// RoleAdmin is the admin role
	RoleAdmin RoleType = "admin"
	// RoleMember is the member role
	RoleMember RoleType = "member"
)

var (
	// ErrInvalidToken token signature, claims, issuer or expiry check failed
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret NewVerifier refuses an empty HS256 key
	ErrEmptySecret = errors.New("jwt secret is empty")
)

// Claims structure for custom claims in JWT
type Claims struct {
	MemberID string `json:"user_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier HS256 signer / parser bound to one secret
type Verifier struct {
	secret     []byte
	issuer     string
	expiration time.Duration
}

// NewVerifier create Verifier, 預設 token 有效時間 60 分鐘
// issuer 有值時 ParseJWT 只接受該 issuer 簽出的 token
func NewVerifier(secret, issuer string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	return &Verifier{
		secret:     []byte(secret),
		issuer:     issuer,
		expiration: 60 * time.Minute,
	}, nil
}

// GenerateJWT generates a JWT token
func (v *Verifier) GenerateJWT(memberID string, role RoleType) (string, error) {
	now := time.Now()
	claims := Claims{
		MemberID: memberID,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    v.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// ParseJWT parses a JWT and extracts the Claims
func (v *Verifier) ParseJWT(tokenStr string) (*Claims, error) {
	var opts []jwt.ParserOption
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.MemberID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
