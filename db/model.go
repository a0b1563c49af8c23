package db

import "time"

// User 用户记录
type User struct {
	Username   string    `json:"username"`
	Password   string    `json:"-"` // bcrypt哈希，永远不返回给前端
	NextTaskID int64     `json:"-"` // 任务ID分配计数器，只由AllocateTaskID修改
	CreatedAt  time.Time `json:"created_at"`
}

// TaskStatus 任务状态
type TaskStatus string

const (
	StatusTodo    TaskStatus = "todo"
	StatusStarted TaskStatus = "started"
	StatusDone    TaskStatus = "done"
)

// IsValid 检查状态是否合法
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusStarted, StatusDone:
		return true
	}
	return false
}

// TaskAction 任务操作类型
type TaskAction string

const (
	ActionUpdate TaskAction = "update"
	ActionDelete TaskAction = "delete"
)

// Task 任务记录，ID在所属用户的命名空间内唯一且不可修改
type Task struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	Body     string     `json:"body"`
	Status   TaskStatus `json:"status"`
	Priority int        `json:"priority"`
}

// TaskPatch 任务的部分更新字段，零值表示"不修改"
type TaskPatch struct {
	Title    string     `json:"title"`
	Body     string     `json:"body"`
	Status   TaskStatus `json:"status"`
	Priority int        `json:"priority"`
}

// ApplyPatch 按字段覆盖任务内容，只有非零值字段才生效
// 过滤规则和创建任务时一致：空字符串和0视为"不修改"，ID永远不变
func (t *Task) ApplyPatch(p TaskPatch) {
	if p.Title != "" {
		t.Title = p.Title
	}
	if p.Body != "" {
		t.Body = p.Body
	}
	if p.Status != "" {
		t.Status = p.Status
	}
	if p.Priority != 0 {
		t.Priority = p.Priority
	}
}
