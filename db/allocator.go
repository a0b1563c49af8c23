package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// AllocateTaskID 为用户分配下一个任务ID
// 自增由数据库在单条语句内完成，同一用户的并发分配不会拿到相同的ID，
// 计数器只增不减。分配后如果下游写入失败，ID不回收，留下的空洞
// 不影响唯一性和单调性
func AllocateTaskID(username string) (int64, error) {
	query := `
	UPDATE users
	SET next_task_id = next_task_id + 1
	WHERE username = ?
	RETURNING next_task_id
	`

	var newID int64
	err := db.QueryRow(query, username).Scan(&newID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("分配任务ID失败: %w", err)
	}

	return newID, nil
}
