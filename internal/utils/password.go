package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword 哈希运营账号密码，配置中已给出bcrypt哈希时原样返回
func HashPassword(password string) (string, error) {
	if IsPasswordHash(password) {
		return password, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// IsPasswordHash 是否为bcrypt哈希
func IsPasswordHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// CheckPassword 验证密码
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
