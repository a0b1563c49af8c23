package db

import "fmt"

// CreateTask 创建新任务，标题必填
// 校验先于ID分配，标题缺失时不消耗计数器
func CreateTask(idx *TaskIndex, patch TaskPatch) (*Task, error) {
	if patch.Title == "" {
		return nil, ErrTitleRequired
	}
	if patch.Status != "" && !patch.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	// 分配任务ID
	id, err := AllocateTaskID(idx.Username())
	if err != nil {
		return nil, err
	}

	// 在默认值之上合并非零字段
	task := &Task{
		ID:     id,
		Status: StatusTodo,
	}
	task.ApplyPatch(patch)

	if err := idx.AddDocument(task); err != nil {
		return nil, fmt.Errorf("写入任务失败: %w", err)
	}

	return task, nil
}

// GetTask 按ID获取任务
func GetTask(idx *TaskIndex, id int64) (*Task, error) {
	return idx.GetDocument(id)
}

// UpdateTask 部分更新任务，零值字段保持原样，ID不可修改
// 状态转移没有限制，三个状态之间任意切换
func UpdateTask(idx *TaskIndex, id int64, patch TaskPatch) error {
	if patch.Status != "" && !patch.Status.IsValid() {
		return ErrInvalidStatus
	}

	task, err := idx.GetDocument(id)
	if err != nil {
		return err
	}

	task.ApplyPatch(patch)
	return idx.UpdateDocument(task)
}

// DeleteTask 永久删除任务，没有软删除
func DeleteTask(idx *TaskIndex, id int64) error {
	return idx.DeleteDocument(id)
}

// DispatchTaskAction 更新和删除的统一入口，按action分发
func DispatchTaskAction(idx *TaskIndex, id int64, action TaskAction, patch TaskPatch) error {
	switch action {
	case ActionUpdate:
		return UpdateTask(idx, id, patch)
	case ActionDelete:
		return DeleteTask(idx, id)
	default:
		return ErrUnknownAction
	}
}
