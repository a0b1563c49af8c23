package db

import (
	"crypto/rand"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 服务配置
type Config struct {
	ListenAddr string        // HTTP监听地址
	DBPath     string        // SQLite数据库文件路径
	JWTSecret  []byte        // token签名密钥，启动后不再变化
	TokenTTL   time.Duration // token有效期
}

// LoadConfig 从环境变量加载配置，支持.env文件
func LoadConfig() *Config {
	// .env文件不存在时忽略错误
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr: getEnv("TASK_LISTEN_ADDR", ":8080"),
		DBPath:     getEnv("TASK_DB_PATH", "./data/tasktracker.db"),
		TokenTTL:   30 * time.Minute,
	}

	if v := os.Getenv("TASK_TOKEN_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			log.Printf("无效的TASK_TOKEN_TTL_MINUTES: %s，使用默认值30", v)
		} else {
			cfg.TokenTTL = time.Duration(minutes) * time.Minute
		}
	}

	if secret := os.Getenv("TASK_JWT_SECRET"); secret != "" {
		cfg.JWTSecret = []byte(secret)
	} else {
		// 未配置密钥时生成随机密钥，进程重启后旧token全部失效
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			cfg.JWTSecret = []byte("default_secret_key_for_development")
		} else {
			cfg.JWTSecret = key
		}
	}

	return cfg
}

// 读取环境变量，未设置时返回默认值
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
