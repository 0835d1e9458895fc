package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"studio-go/internal/config"
	"studio-go/internal/models"
	"studio-go/internal/repository"
	"studio-go/internal/workshop"
	"studio-go/pkg/backend_caller"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testEmail = "ana@example.com"

// fakeBackend 模拟内容生成后端
type fakeBackend struct {
	mu       sync.Mutex
	allowed  bool
	message  string
	accessUp bool
	calls    map[string]int
	bodies   map[string][]map[string]interface{}
	// reply 按路径返回状态码和响应体，n 为该路径第几次调用
	reply func(path string, n int, body map[string]interface{}) (int, string)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/validate-access" {
		f.mu.Lock()
		up, allowed, msg := f.accessUp, f.allowed, f.message
		f.mu.Unlock()
		if !up {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"allowed": allowed, "message": msg})
		return
	}

	raw, _ := io.ReadAll(r.Body)
	var body map[string]interface{}
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.calls[r.URL.Path]++
	n := f.calls[r.URL.Path]
	f.bodies[r.URL.Path] = append(f.bodies[r.URL.Path], body)
	reply := f.reply
	f.mu.Unlock()

	status, out := http.StatusNotFound, "not found"
	if reply != nil {
		status, out = reply(r.URL.Path, n, body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, out)
}

func (f *fakeBackend) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeBackend) Body(path string, i int) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[path][i]
}

func (f *fakeBackend) setAccess(up, allowed bool, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accessUp, f.allowed, f.message = up, allowed, message
}

type testEnv struct {
	backend   *fakeBackend
	cfg       *config.Config
	manager   *TaskManager
	tasks     *repository.TaskRepository
	artifacts *repository.ArtifactRepository
	units     *repository.UnitRepository
	kv        repository.KVRepository
	caller    *backend_caller.BackendCaller
	gen       *GenerationService
	chat      *ChatService
	unitSvc   *UnitService
}

func newTestEnv(t *testing.T, reply func(path string, n int, body map[string]interface{}) (int, string)) *testEnv {
	backend := &fakeBackend{
		allowed:  true,
		accessUp: true,
		calls:    map[string]int{},
		bodies:   map[string][]map[string]interface{}{},
		reply:    reply,
	}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	db, err := models.OpenDB(filepath.Join(t.TempDir(), "studio.db"))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Backend.BaseURL = srv.URL
	cfg.Access.FailOpen = true
	config.SetDefaults(cfg)
	cfg.Export.Timezone = "UTC"

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	caller := backend_caller.NewBackendCaller(srv.URL, 5*time.Second, logger)
	caller.SetSleep(func(ctx context.Context, d time.Duration) error { return ctx.Err() })

	env := &testEnv{
		backend:   backend,
		cfg:       cfg,
		manager:   NewTaskManager(),
		tasks:     repository.NewTaskRepository(db),
		artifacts: repository.NewArtifactRepository(db),
		units:     repository.NewUnitRepository(db),
		kv:        repository.NewGormKVRepository(db),
		caller:    caller,
	}

	tools := NewToolService(workshop.NewRegistry(), repository.NewToolEndpointRepository(db), cfg.Backend.RetryAttempts, logger)
	access := NewAccessGate(caller, cfg, logger)
	env.gen = NewGenerationService(tools, env.tasks, env.artifacts, caller, access, nil, env.manager, cfg, logger)
	env.chat = NewChatService(env.artifacts, repository.NewChatRepository(db), env.kv, tools, caller, access, cfg, logger)
	env.gen.AddListener(env.chat)
	env.unitSvc = NewUnitService(env.units, env.gen, cfg, logger)
	return env
}

// waitReleased 等待任务退出进行中登记
func (e *testEnv) waitReleased(t *testing.T, tc *TaskContext) {
	require.Eventually(t, func() bool {
		_, running := e.manager.FindRunning(tc.Email, tc.IdempotencyKey)
		return !running
	}, 5*time.Second, 10*time.Millisecond)
}

func rubricFields(tema string) workshop.Fields {
	return workshop.Fields{"tema": tema, "grado": "5° básico", "asignatura": "Matemáticas"}
}

func eventTypes(tc *TaskContext) []string {
	var types []string
	for _, ev := range tc.GetEventHistory() {
		types = append(types, ev.Type)
	}
	return types
}
