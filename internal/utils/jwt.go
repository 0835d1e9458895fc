package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer 运营后台Token的签发者
const tokenIssuer = "studio-go"

// ErrInvalidToken Token无效或已过期
var ErrInvalidToken = errors.New("Token无效或已过期")

// JWTClaims 运营账号的JWT声明
type JWTClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTManager 签发和校验运营后台Token
type JWTManager struct {
	secretKey []byte
	method    jwt.SigningMethod
	ttl       time.Duration
}

// NewJWTManager 创建JWT管理器，未知算法回退到HS256
func NewJWTManager(secretKey string, algorithm string, ttl time.Duration) *JWTManager {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	return &JWTManager{secretKey: []byte(secretKey), method: method, ttl: ttl}
}

// GenerateToken 为运营账号签发Token
func (j *JWTManager) GenerateToken(adminID uint, username string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(j.method, claims).SignedString(j.secretKey)
}

// ValidateToken 校验签名、算法、签发者和有效期
func (j *JWTManager) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return j.secretKey, nil },
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
