package db

import (
	"errors"
	"reflect"
	"testing"
)

func TestSortSpecClauses(t *testing.T) {
	tests := []struct {
		name string
		spec SortSpec
		want []string
	}{
		{
			"empty",
			SortSpec{},
			nil,
		},
		{
			"single field",
			SortSpec{Priority: SortDesc},
			[]string{"priority:desc"},
		},
		{
			// 子句顺序固定为title、body、status、priority
			"all fields fixed order",
			SortSpec{Priority: SortDesc, Status: SortAsc, Body: SortDesc, Title: SortAsc},
			[]string{"title:asc", "body:desc", "status:asc", "priority:desc"},
		},
		{
			// id字段不参与排序翻译
			"id excluded",
			SortSpec{ID: SortAsc, Title: SortDesc},
			[]string{"title:desc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.spec.Clauses()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Clauses() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortSpecValidate(t *testing.T) {
	good := SortSpec{Title: SortAsc, Priority: SortDesc}
	if err := good.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := SortSpec{Priority: "sideways"}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidSort) {
		t.Errorf("err = %v, want ErrInvalidSort", err)
	}
}

func TestTranslateSearch(t *testing.T) {
	setupTestDB(t)
	idx := newTestIndex(t, "alice")

	for _, title := range []string{"buy milk", "pay bills", "walk dog"} {
		if _, err := CreateTask(idx, TaskPatch{Title: title}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	req, err := TranslateSearch(idx, "milk", &SortSpec{Priority: SortAsc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 查询原样传递，limit取当前文档总数
	if req.Query != "milk" {
		t.Errorf("query = %q, want %q", req.Query, "milk")
	}
	if req.Limit != 3 {
		t.Errorf("limit = %d, want 3", req.Limit)
	}
	if !reflect.DeepEqual(req.Sort, []string{"priority:asc"}) {
		t.Errorf("sort = %v", req.Sort)
	}
}

func TestSearch_IndexNotReady(t *testing.T) {
	setupTestDB(t)
	idx := newTestIndex(t, "alice")

	// 从未写入过文档的命名空间，底层搜索报ErrIndexNotReady
	_, err := idx.Search(&SearchRequest{Query: ""})
	if !errors.Is(err, ErrIndexNotReady) {
		t.Fatalf("err = %v, want ErrIndexNotReady", err)
	}

	// 搜索路径把它降级为空结果
	hits, err := SearchTasks(idx, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Errorf("hits = %v, want empty slice", hits)
	}
}

func TestSearchTasks_Query(t *testing.T) {
	setupTestDB(t)
	idx := newTestIndex(t, "alice")

	if _, err := CreateTask(idx, TaskPatch{Title: "buy milk"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := CreateTask(idx, TaskPatch{Title: "pay bills", Body: "electricity and milk delivery"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := CreateTask(idx, TaskPatch{Title: "walk dog"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 标题或正文命中都算
	hits, err := SearchTasks(idx, "milk", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}

	// 空查询命中全部
	all, err := SearchTasks(idx, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d hits, want 3", len(all))
	}

	// 无命中返回空序列而不是nil
	none, err := SearchTasks(idx, "spaceship", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("hits = %v, want empty slice", none)
	}
}

func TestSearchTasks_Sort(t *testing.T) {
	setupTestDB(t)
	idx := newTestIndex(t, "alice")

	for _, p := range []int{3, 1, 2} {
		if _, err := CreateTask(idx, TaskPatch{Title: "task", Priority: p}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	asc, err := SearchTasks(idx, "", &SortSpec{Priority: SortAsc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(asc); i++ {
		if asc[i-1].Priority > asc[i].Priority {
			t.Fatalf("升序排序错误: %v", asc)
		}
	}

	desc, err := SearchTasks(idx, "", &SortSpec{Priority: SortDesc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(desc); i++ {
		if desc[i-1].Priority < desc[i].Priority {
			t.Fatalf("降序排序错误: %v", desc)
		}
	}
}

func TestSearch_RejectsUnknownSortField(t *testing.T) {
	setupTestDB(t)
	idx := newTestIndex(t, "alice")

	if _, err := CreateTask(idx, TaskPatch{Title: "task"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// id不在可排序字段白名单里，手工构造的子句会被拒绝
	_, err := idx.Search(&SearchRequest{Query: "", Limit: 1, Sort: []string{"id:asc"}})
	if err == nil {
		t.Fatal("expected error")
	}

	_, err = idx.Search(&SearchRequest{Query: "", Limit: 1, Sort: []string{"priority desc"}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchTasks_AfterDelete(t *testing.T) {
	setupTestDB(t)
	idx := newTestIndex(t, "alice")

	first, err := CreateTask(idx, TaskPatch{Title: "buy milk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := CreateTask(idx, TaskPatch{Title: "pay bills"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := DeleteTask(idx, second.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 删除后搜索只剩下第一个任务
	hits, err := SearchTasks(idx, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != first.ID {
		t.Errorf("hits = %v, want only task %d", hits, first.ID)
	}
}
