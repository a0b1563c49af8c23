package db

import (
	"errors"
	"fmt"
	"strings"
)

// SortOrder 排序方向
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// IsValid 检查排序方向是否合法
func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

// SortSpec 各字段的排序方向，空值表示该字段不参与排序
type SortSpec struct {
	ID       SortOrder `json:"id"`
	Title    SortOrder `json:"title"`
	Body     SortOrder `json:"body"`
	Status   SortOrder `json:"status"`
	Priority SortOrder `json:"priority"`
}

// Validate 检查各字段的排序方向
func (s *SortSpec) Validate() error {
	for _, o := range []SortOrder{s.ID, s.Title, s.Body, s.Status, s.Priority} {
		if o != "" && !o.IsValid() {
			return ErrInvalidSort
		}
	}
	return nil
}

// Clauses 按固定顺序title、body、status、priority生成排序子句
// 子句格式为"<字段>:<asc|desc>"，id刻意不参与排序翻译
func (s *SortSpec) Clauses() []string {
	var clauses []string
	if s.Title != "" {
		clauses = append(clauses, fmt.Sprintf("title:%s", s.Title))
	}
	if s.Body != "" {
		clauses = append(clauses, fmt.Sprintf("body:%s", s.Body))
	}
	if s.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status:%s", s.Status))
	}
	if s.Priority != "" {
		clauses = append(clauses, fmt.Sprintf("priority:%s", s.Priority))
	}
	return clauses
}

// SearchRequest 提交给命名空间搜索能力的参数
type SearchRequest struct {
	Query string   // 自由文本查询，原样传递
	Limit int64    // 返回条数上限
	Sort  []string // 排序子句，格式"<字段>:<asc|desc>"
}

// TranslateSearch 把自由文本查询和排序要求翻译成搜索请求
// limit取当前文档总数，即"返回所有命中"
func TranslateSearch(idx *TaskIndex, query string, sort *SortSpec) (*SearchRequest, error) {
	count, err := idx.DocumentCount()
	if err != nil {
		return nil, err
	}

	req := &SearchRequest{
		Query: query,
		Limit: count,
	}
	if sort != nil {
		if err := sort.Validate(); err != nil {
			return nil, err
		}
		req.Sort = sort.Clauses()
	}

	return req, nil
}

// 搜索可用的排序字段白名单
var sortableFields = map[string]bool{
	"title":    true,
	"body":     true,
	"status":   true,
	"priority": true,
}

// 把排序子句翻译成ORDER BY片段，子句不合法时报错
func buildOrderBy(sortClauses []string) (string, error) {
	if len(sortClauses) == 0 {
		return "", nil
	}

	var parts []string
	for _, clause := range sortClauses {
		field, order, ok := strings.Cut(clause, ":")
		if !ok || !sortableFields[field] {
			return "", fmt.Errorf("非法的排序子句: %s", clause)
		}
		switch order {
		case "asc":
			parts = append(parts, field+" ASC")
		case "desc":
			parts = append(parts, field+" DESC")
		default:
			return "", fmt.Errorf("非法的排序方向: %s", order)
		}
	}

	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// Search 在命名空间内执行搜索请求
// 自由文本按标题或正文的子串匹配（不区分大小写），空查询命中全部文档
// 命名空间从未初始化时返回ErrIndexNotReady，由调用方决定如何处理
func (idx *TaskIndex) Search(req *SearchRequest) ([]Task, error) {
	ready, err := idx.Ready()
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, ErrIndexNotReady
	}

	orderBy, err := buildOrderBy(req.Sort)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, title, body, status, priority
	FROM tasks
	WHERE username = ? AND (title LIKE ? OR body LIKE ?)
	` + orderBy + " LIMIT ?"

	pattern := "%" + req.Query + "%"

	rows, err := db.Query(query, idx.username, pattern, pattern, req.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var task Task
		var statusStr string

		err := rows.Scan(&task.ID, &task.Title, &task.Body, &statusStr, &task.Priority)
		if err != nil {
			return nil, err
		}

		task.Status = TaskStatus(statusStr)
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// SearchTasks 翻译并执行搜索
// 命名空间未初始化按"无结果"处理，这个降级只发生在搜索路径上，
// 其他操作的存储错误照常上抛
func SearchTasks(idx *TaskIndex, query string, sort *SortSpec) ([]Task, error) {
	req, err := TranslateSearch(idx, query, sort)
	if err != nil {
		return nil, err
	}

	hits, err := idx.Search(req)
	if errors.Is(err, ErrIndexNotReady) {
		return []Task{}, nil
	}
	if err != nil {
		return nil, err
	}

	if hits == nil {
		hits = []Task{}
	}
	return hits, nil
}

// ListTasks 列出命名空间内的全部任务，等价于空查询搜索
func ListTasks(idx *TaskIndex) ([]Task, error) {
	return SearchTasks(idx, "", nil)
}
