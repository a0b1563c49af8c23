package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// JWT密钥和token有效期，进程启动时初始化一次，之后只读
var (
	jwtSecret []byte
	tokenTTL  = 30 * time.Minute
)

// InitAuth 初始化签名密钥和token有效期
func InitAuth(secret []byte, ttl time.Duration) {
	jwtSecret = secret
	if ttl > 0 {
		tokenTTL = ttl
	}
}

// Claims 自定义JWT声明结构，用户名放在标准的sub字段里
type Claims struct {
	jwt.RegisteredClaims
}

// Session 一次请求的认证上下文，绑定该用户的任务命名空间
// 不做持久化，每个请求都从token重新解析
type Session struct {
	Username string
	Index    *TaskIndex
}

// 生成密码哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// 验证密码
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// RegisterUser 用户注册
func RegisterUser(username, password string) (*User, error) {
	// 检查用户名是否已存在
	_, err := GetUserByUsernameFromDB(username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	// 生成密码哈希
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	// 创建新用户，任务ID计数器从0开始
	newUser := &User{
		Username:   username,
		Password:   hashedPassword,
		NextTaskID: 0,
		CreatedAt:  time.Now(),
	}

	if err := SaveUserToDB(newUser); err != nil {
		return nil, fmt.Errorf("保存用户失败: %w", err)
	}

	return newUser, nil
}

// LoginUser 用户登录，成功时返回访问token
func LoginUser(username, password string) (string, error) {
	user, err := GetUserByUsernameFromDB(username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	// 验证密码
	if !CheckPassword(password, user.Password) {
		return "", ErrInvalidCredentials
	}

	return GenerateToken(user.Username)
}

// GenerateToken 生成JWT token
func GenerateToken(username string) (string, error) {
	now := time.Now()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken 验证JWT token
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// ResolveSession 从token解析出会话
// 这是获得任务命名空间句柄的唯一入口，租户隔离在这里保证
func ResolveSession(tokenString string) (*Session, error) {
	claims, err := ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	username := claims.Subject
	if username == "" {
		return nil, ErrInvalidToken
	}

	// token签发后用户可能已被删除，签发对象必须仍然存在
	if _, err := GetUserByUsernameFromDB(username); err != nil {
		return nil, ErrInvalidToken
	}

	return &Session{
		Username: username,
		Index:    OpenTaskIndex(username),
	}, nil
}
