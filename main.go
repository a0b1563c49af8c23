package main

import (
	"TaskTracker/db"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
)

func main() {
	// 加载配置
	cfg := db.LoadConfig()

	// 初始化数据库
	if err := db.InitDatabase(cfg.DBPath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}
	defer db.CloseDatabase()

	// 初始化token签名密钥和有效期
	db.InitAuth(cfg.JWTSecret, cfg.TokenTTL)

	log.Println("Server starting on", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, buildMux()))
}

// buildMux 注册全部路由
func buildMux() *http.ServeMux {
	mux := http.NewServeMux()

	// 认证相关路由（不需要验证）
	mux.HandleFunc("/api/signup", handleSignup)
	mux.HandleFunc("/api/login", handleLogin)

	// 任务相关路由（需要验证）
	mux.HandleFunc("/api/tasks/new", authMiddleware(handleCreateTask))
	mux.HandleFunc("/api/tasks", authMiddleware(handleListTasks))
	mux.HandleFunc("/api/tasks/{id}", authMiddleware(handleGetTask))
	mux.HandleFunc("/api/tasks/{id}/{action}", authMiddleware(handleTaskAction))
	mux.HandleFunc("/api/search", authMiddleware(handleSearch))

	return mux
}

// 认证中间件
func authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 设置CORS头
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// 处理OPTIONS请求
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		// 获取Authorization头
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "缺少认证token"})
			return
		}

		// 检查Bearer前缀
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "无效的认证格式"})
			return
		}

		// 解析会话，这里是获得命名空间句柄的唯一途径
		session, err := db.ResolveSession(parts[1])
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "无效的token，请重新登录"})
			return
		}

		// 将会话存储在请求上下文中
		ctx := context.WithValue(r.Context(), "session", session)
		next(w, r.WithContext(ctx))
	}
}

// 从请求上下文取出会话
func sessionFrom(r *http.Request) (*db.Session, bool) {
	session, ok := r.Context().Value("session").(*db.Session)
	return session, ok
}

// 错误到HTTP状态码的映射
func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrUsernameTaken),
		errors.Is(err, db.ErrInvalidCredentials),
		errors.Is(err, db.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, db.ErrTitleRequired),
		errors.Is(err, db.ErrInvalidStatus),
		errors.Is(err, db.ErrInvalidSort):
		return http.StatusUnprocessableEntity
	case errors.Is(err, db.ErrTaskNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// 用户注册处理
func handleSignup(w http.ResponseWriter, r *http.Request) {
	// 设置CORS头
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var signupData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	err := json.NewDecoder(r.Body).Decode(&signupData)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "无效的请求数据"})
		return
	}

	// 验证输入
	if signupData.Username == "" || signupData.Password == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "用户名和密码不能为空"})
		return
	}

	// 注册用户
	user, err := db.RegisterUser(signupData.Username, signupData.Password)
	if err != nil {
		w.WriteHeader(statusFor(err))
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	log.Printf("新用户注册: %s", user.Username)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"username": user.Username})
}

// 用户登录处理
func handleLogin(w http.ResponseWriter, r *http.Request) {
	// 设置CORS头
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var loginData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	err := json.NewDecoder(r.Body).Decode(&loginData)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "无效的请求数据"})
		return
	}

	// 登录，失败时统一报"用户名或密码错误"
	token, err := db.LoginUser(loginData.Username, loginData.Password)
	if err != nil {
		w.WriteHeader(statusFor(err))
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"access_token": token})
}

// 创建任务处理
func handleCreateTask(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	session, ok := sessionFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "无法获取会话信息"})
		return
	}

	var patch db.TaskPatch
	err := json.NewDecoder(r.Body).Decode(&patch)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "无效的请求数据"})
		return
	}

	task, err := db.CreateTask(session.Index, patch)
	if err != nil {
		w.WriteHeader(statusFor(err))
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	log.Printf("用户 %s 创建任务 %d: %s", session.Username, task.ID, task.Title)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(task)
}

// 获取任务列表处理
func handleListTasks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	session, ok := sessionFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "无法获取会话信息"})
		return
	}

	tasks, err := db.ListTasks(session.Index)
	if err != nil {
		w.WriteHeader(statusFor(err))
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tasks)
}

// 按ID获取任务处理
func handleGetTask(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	session, ok := sessionFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "无法获取会话信息"})
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "无效的任务ID"})
		return
	}

	task, err := db.GetTask(session.Index, id)
	if err != nil {
		w.WriteHeader(statusFor(err))
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(task)
}

// 更新/删除任务的统一入口，按路径里的action分发
func handleTaskAction(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	session, ok := sessionFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "无法获取会话信息"})
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "无效的任务ID"})
		return
	}
	action := db.TaskAction(r.PathValue("action"))

	// 删除请求可以没有请求体
	var patch db.TaskPatch
	err = json.NewDecoder(r.Body).Decode(&patch)
	if err != nil && !errors.Is(err, io.EOF) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "无效的请求数据"})
		return
	}

	if err := db.DispatchTaskAction(session.Index, id, action, patch); err != nil {
		w.WriteHeader(statusFor(err))
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	log.Printf("用户 %s 对任务 %d 执行 %s", session.Username, id, action)

	w.WriteHeader(http.StatusOK)
	if action == db.ActionUpdate {
		json.NewEncoder(w).Encode(map[string]string{"success": "true"})
	}
}

// 搜索任务处理
func handleSearch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	session, ok := sessionFrom(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "无法获取会话信息"})
		return
	}

	// 请求体可以为空，等价于列出全部任务
	var searchData struct {
		Query string       `json:"query"`
		Sort  *db.SortSpec `json:"sort"`
	}
	err := json.NewDecoder(r.Body).Decode(&searchData)
	if err != nil && !errors.Is(err, io.EOF) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "无效的请求数据"})
		return
	}

	tasks, err := db.SearchTasks(session.Index, searchData.Query, searchData.Sort)
	if err != nil {
		w.WriteHeader(statusFor(err))
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tasks)
}
