package db

import "errors"

// 错误定义，handler层用errors.Is映射成HTTP状态码
var (
	// ErrUsernameTaken 用户名已被占用
	ErrUsernameTaken = errors.New("用户名已存在")

	// ErrInvalidCredentials 登录失败，故意不区分"用户不存在"和"密码错误"
	ErrInvalidCredentials = errors.New("用户名或密码错误")

	// ErrInvalidToken token无法验证、已过期、缺少subject或签发对象已不存在
	ErrInvalidToken = errors.New("无效的token")

	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("用户不存在")

	// ErrTitleRequired 创建任务时标题必填
	ErrTitleRequired = errors.New("任务标题不能为空")

	// ErrInvalidStatus 非法的任务状态
	ErrInvalidStatus = errors.New("非法的任务状态")

	// ErrInvalidSort 非法的排序方向
	ErrInvalidSort = errors.New("非法的排序方向")

	// ErrTaskNotFound 当前命名空间内不存在该任务
	ErrTaskNotFound = errors.New("任务不存在")

	// ErrIndexNotReady 任务命名空间尚未初始化（从未写入过文档）
	// 只有搜索路径会把它降级为空结果，其他路径照常上抛
	ErrIndexNotReady = errors.New("任务索引尚未初始化")

	// ErrUnknownAction 未知的任务操作类型
	ErrUnknownAction = errors.New("未知的任务操作")
)
