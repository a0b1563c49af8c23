package db

import (
	"database/sql"
	"errors"
)

// TaskIndex 一个用户的任务命名空间句柄
// 正常流程中只能通过ResolveSession获得，所有文档操作都限定在
// 该用户自己的命名空间内，跨租户访问在结构上不可能发生
type TaskIndex struct {
	username string
}

// OpenTaskIndex 打开指定用户的任务命名空间
func OpenTaskIndex(username string) *TaskIndex {
	return &TaskIndex{username: username}
}

// Username 命名空间所属的用户名
func (idx *TaskIndex) Username() string {
	return idx.username
}

// AddDocument 向命名空间写入一条任务文档，首次写入时初始化命名空间
func (idx *TaskIndex) AddDocument(task *Task) error {
	if err := idx.materialize(); err != nil {
		return err
	}

	query := `
	INSERT INTO tasks (username, id, title, body, status, priority)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query, idx.username, task.ID, task.Title, task.Body, string(task.Status), task.Priority)
	return err
}

// materialize 标记命名空间已初始化（幂等）
func (idx *TaskIndex) materialize() error {
	_, err := db.Exec("INSERT OR IGNORE INTO namespaces (username) VALUES (?)", idx.username)
	return err
}

// Ready 命名空间是否已初始化过
func (idx *TaskIndex) Ready() (bool, error) {
	var one int
	err := db.QueryRow("SELECT 1 FROM namespaces WHERE username = ?", idx.username).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetDocument 按ID读取任务文档
func (idx *TaskIndex) GetDocument(id int64) (*Task, error) {
	query := `
	SELECT id, title, body, status, priority
	FROM tasks
	WHERE username = ? AND id = ?
	`

	var task Task
	var statusStr string

	err := db.QueryRow(query, idx.username, id).Scan(
		&task.ID, &task.Title, &task.Body, &statusStr, &task.Priority,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}

	task.Status = TaskStatus(statusStr)
	return &task, nil
}

// UpdateDocument 覆盖写入任务文档
func (idx *TaskIndex) UpdateDocument(task *Task) error {
	query := `
	UPDATE tasks
	SET title = ?, body = ?, status = ?, priority = ?
	WHERE username = ? AND id = ?
	`
	_, err := db.Exec(query, task.Title, task.Body, string(task.Status), task.Priority, idx.username, task.ID)
	return err
}

// DeleteDocument 删除任务文档，不存在时返回ErrTaskNotFound
func (idx *TaskIndex) DeleteDocument(id int64) error {
	result, err := db.Exec("DELETE FROM tasks WHERE username = ? AND id = ?", idx.username, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DocumentCount 命名空间当前的文档总数
func (idx *TaskIndex) DocumentCount() (int64, error) {
	var count int64
	err := db.QueryRow("SELECT COUNT(*) FROM tasks WHERE username = ?", idx.username).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
