package db

import (
	"path/filepath"
	"testing"
	"time"
)

// 每个测试使用独立的临时数据库
func setupTestDB(t *testing.T) {
	t.Helper()

	if err := InitDatabase(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	InitAuth([]byte("test-secret"), 30*time.Minute)

	t.Cleanup(func() {
		if err := CloseDatabase(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

// 直接写入用户记录，跳过bcrypt加速测试
func newTestUser(t *testing.T, username string) {
	t.Helper()

	user := &User{
		Username:  username,
		Password:  "not-a-real-hash",
		CreatedAt: time.Now(),
	}
	if err := SaveUserToDB(user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// 创建用户并返回其命名空间句柄
func newTestIndex(t *testing.T, username string) *TaskIndex {
	t.Helper()

	newTestUser(t, username)
	return OpenTaskIndex(username)
}
