package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// InitDatabase 初始化数据库连接
func InitDatabase(dbPath string) error {
	var err error

	// 确保数据目录存在
	dataDir := filepath.Dir(dbPath)
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		err = os.MkdirAll(dataDir, 0755)
		if err != nil {
			return fmt.Errorf("创建数据目录失败: %v", err)
		}
	}

	// 打开SQLite数据库连接
	db, err = sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("打开数据库失败: %v", err)
	}

	// sqlite同一时刻只允许一个写者，串行化连接避免SQLITE_BUSY
	db.SetMaxOpenConns(1)

	// 测试连接
	err = db.Ping()
	if err != nil {
		return fmt.Errorf("数据库连接失败: %v", err)
	}

	// 创建表
	err = createTables()
	if err != nil {
		return fmt.Errorf("创建表失败: %v", err)
	}

	log.Println("数据库初始化成功")
	return nil
}

// createTables 创建数据库表
func createTables() error {
	// 创建用户表，next_task_id是该用户的任务ID分配计数器
	userTable := `
	CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password TEXT NOT NULL,
		next_task_id INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	`

	// 创建任务表，一个用户的所有任务构成一个命名空间
	taskTable := `
	CREATE TABLE IF NOT EXISTS tasks (
		username TEXT NOT NULL,
		id INTEGER NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		priority INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (username, id),
		FOREIGN KEY (username) REFERENCES users(username) ON DELETE CASCADE
	);
	`

	// 命名空间初始化标记表，首次写入文档时插入
	namespaceTable := `
	CREATE TABLE IF NOT EXISTS namespaces (
		username TEXT PRIMARY KEY
	);
	`

	// 执行建表语句
	_, err := db.Exec(userTable)
	if err != nil {
		return err
	}

	_, err = db.Exec(taskTable)
	if err != nil {
		return err
	}

	_, err = db.Exec(namespaceTable)
	if err != nil {
		return err
	}

	// 创建索引以提高查询性能
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_username ON tasks(username)")
	if err != nil {
		return err
	}

	return nil
}

// CloseDatabase 关闭数据库连接
func CloseDatabase() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// 将time.Time转换为字符串存储
func timeToString(t time.Time) string {
	return t.Format(time.RFC3339)
}

// 将字符串转换为time.Time
func stringToTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// 保存用户到数据库
func SaveUserToDB(user *User) error {
	query := `
	INSERT INTO users (username, password, next_task_id, created_at)
	VALUES (?, ?, ?, ?)
	`
	_, err := db.Exec(query, user.Username, user.Password, user.NextTaskID, timeToString(user.CreatedAt))
	return err
}

// 根据用户名获取用户，不存在时返回sql.ErrNoRows
func GetUserByUsernameFromDB(username string) (*User, error) {
	query := `
	SELECT username, password, next_task_id, created_at
	FROM users
	WHERE username = ?
	`

	var user User
	var createdAtStr string

	err := db.QueryRow(query, username).Scan(
		&user.Username, &user.Password, &user.NextTaskID, &createdAtStr,
	)

	if err != nil {
		return nil, err
	}

	user.CreatedAt, err = stringToTime(createdAtStr)
	if err != nil {
		return nil, err
	}

	return &user, nil
}
