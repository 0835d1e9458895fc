package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"studio-go/internal/dto"
	"studio-go/internal/models"
	"studio-go/internal/workshop"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rubricJSON = `{"titulo":"Rúbrica de fracciones","criterios":[{"criterio":"Comprensión","niveles":{"excelente":"Explica con claridad"}}]}`

func TestGenerateSuccess(t *testing.T) {
	env := newTestEnv(t, func(path string, n int, body map[string]interface{}) (int, string) {
		return http.StatusOK, "```json\n" + rubricJSON + "\n```"
	})

	tc, a, err := env.gen.Generate(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)

	assert.Equal(t, models.TaskStatusFinished, tc.Status())
	assert.Equal(t, "Rúbrica de fracciones", a.Title)
	assert.Equal(t, rubricJSON, a.Content)
	assert.Equal(t, models.SourceGenerated, a.Source)
	assert.Equal(t, 1, a.Revision)
	assert.Equal(t, testEmail, a.Email)
	assert.Equal(t, 1, env.backend.Calls("/rubrica"))

	// 表单中的邮箱随请求发送
	body := env.backend.Body("/rubrica", 0)
	assert.Equal(t, testEmail, body["email"])
	assert.Equal(t, "Fracciones", body["tema"])

	types := eventTypes(tc)
	assert.Equal(t, dto.EventQueued, types[0])
	assert.Contains(t, types, dto.EventAccess)
	assert.Equal(t, dto.EventFinished, types[len(types)-1])

	env.waitReleased(t, tc)
	task, err := env.tasks.GetByTaskID(tc.TaskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusFinished, task.Status)
	assert.Equal(t, a.ID, task.ArtifactID)
}

func TestGenerateValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.gen.Submit(context.Background(), testEmail, "desconocida", workshop.Fields{})
	assert.ErrorIs(t, err, workshop.ErrUnknownTool)

	_, err = env.gen.Submit(context.Background(), testEmail, workshop.ToolRubrica, workshop.Fields{"tema": "x"})
	assert.ErrorIs(t, err, workshop.ErrMissingField)
	assert.Equal(t, 0, env.backend.Calls("/rubrica"))
}

func TestAccessDeniedSendsNoContentRequest(t *testing.T) {
	env := newTestEnv(t, func(path string, n int, body map[string]interface{}) (int, string) {
		return http.StatusOK, rubricJSON
	})
	env.backend.setAccess(true, false, "Plan gratuito")

	_, err := env.gen.Submit(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccessDenied)

	var denied *AccessDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, "Plan gratuito", denied.Message)
	assert.Equal(t, 0, env.backend.Calls("/rubrica"))
}

func TestAccessServiceDown(t *testing.T) {
	env := newTestEnv(t, func(path string, n int, body map[string]interface{}) (int, string) {
		return http.StatusOK, rubricJSON
	})
	env.backend.setAccess(false, false, "")

	// fail_open 时放行并标记降级
	tc, _, err := env.gen.Generate(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)
	var accessMsg string
	for _, ev := range tc.GetEventHistory() {
		if ev.Type == dto.EventAccess {
			accessMsg = ev.Message
		}
	}
	assert.Equal(t, "校验服务不可用，按策略放行", accessMsg)

	// 关闭 fail_open 后拒绝并返回付费提示
	cfg := *env.cfg
	cfg.Access.FailOpen = false
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	gate := NewAccessGate(env.caller, &cfg, logger)

	decision, err := gate.Check(context.Background(), testEmail)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.True(t, decision.Degraded)
	assert.Equal(t, cfg.Access.PaywallMessage, decision.Message)

	_, err = Require(context.Background(), gate, testEmail)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSubmitDeduplicatesRunningTask(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	env := newTestEnv(t, func(path string, n int, body map[string]interface{}) (int, string) {
		<-release
		return http.StatusOK, rubricJSON
	})
	t.Cleanup(func() { once.Do(func() { close(release) }) })

	first, err := env.gen.Submit(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)
	second, err := env.gen.Submit(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)
	assert.Equal(t, first.TaskID, second.TaskID)

	// 其他用户的相同请求是独立任务
	other, err := env.gen.Submit(context.Background(), "beto@example.com", workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)
	assert.NotEqual(t, first.TaskID, other.TaskID)

	once.Do(func() { close(release) })
	<-first.Done()
	<-other.Done()
	assert.Equal(t, models.TaskStatusFinished, first.Status())
	env.waitReleased(t, first)
	env.waitReleased(t, other)

	assert.Equal(t, 2, env.backend.Calls("/rubrica"))
}

func TestSubmitReusesRecentResult(t *testing.T) {
	env := newTestEnv(t, func(path string, n int, body map[string]interface{}) (int, string) {
		return http.StatusOK, rubricJSON
	})

	first, a, err := env.gen.Generate(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)
	env.waitReleased(t, first)

	again, err := env.gen.Submit(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)
	assert.True(t, again.Reused)
	assert.Equal(t, first.TaskID, again.TaskID)
	assert.Equal(t, a.ID, again.ArtifactID())
	assert.Equal(t, 1, env.backend.Calls("/rubrica"))

	// 不同的表单内容重新生成
	_, b, err := env.gen.Generate(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Decimales"))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, env.backend.Calls("/rubrica"))
}

func TestCancelDiscardsLateResult(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	env := newTestEnv(t, func(path string, n int, body map[string]interface{}) (int, string) {
		<-release
		return http.StatusOK, rubricJSON
	})
	t.Cleanup(func() { once.Do(func() { close(release) }) })

	tc, err := env.gen.Submit(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return env.backend.Calls("/rubrica") == 1 }, 5*time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, env.gen.Cancel(tc.TaskID, "beto@example.com"), ErrTaskNotFound)
	require.NoError(t, env.gen.Cancel(tc.TaskID, testEmail))
	assert.Equal(t, models.TaskStatusCancelled, tc.Status())
	assert.ErrorIs(t, env.gen.Cancel(tc.TaskID, testEmail), ErrTaskFinished)

	once.Do(func() { close(release) })
	env.waitReleased(t, tc)

	_, total, err := env.artifacts.ListByEmail(testEmail, "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	task, err := env.tasks.GetByTaskID(tc.TaskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCancelled, task.Status)

	resp, err := env.gen.Get(tc.TaskID, testEmail)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCancelled, resp.Status)
}

func TestCrosswordRetries(t *testing.T) {
	env := newTestEnv(t, func(path string, n int, body map[string]interface{}) (int, string) {
		if n < 3 {
			return http.StatusBadGateway, "upstream"
		}
		return http.StatusOK, `{"titulo":"Animales","across":[],"down":[]}`
	})

	tc, a, err := env.gen.Generate(context.Background(), testEmail, workshop.ToolCrucigrama, workshop.Fields{"tema": "Animales"})
	require.NoError(t, err)
	assert.Equal(t, "Animales", a.Title)
	assert.Equal(t, 3, env.backend.Calls("/crucigrama"))
	assert.Equal(t, 3, tc.Snapshot().Attempts)

	retries := 0
	for _, ev := range tc.GetEventHistory() {
		if ev.Type == dto.EventRetry {
			retries++
		}
	}
	assert.Equal(t, 2, retries)

	// 自然语言主题随请求发送
	body := env.backend.Body("/crucigrama", 0)
	assert.Contains(t, body["topic"], "Animales")
	assert.Equal(t, testEmail, body["email"])
}

func TestCrosswordGivesUp(t *testing.T) {
	env := newTestEnv(t, func(path string, n int, body map[string]interface{}) (int, string) {
		return http.StatusInternalServerError, "boom"
	})

	tc, _, err := env.gen.Generate(context.Background(), testEmail, workshop.ToolCrucigrama, workshop.Fields{"tema": "Animales"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, 3, env.backend.Calls("/crucigrama"))
	assert.Equal(t, models.TaskStatusError, tc.Status())
}

func TestSingleAttemptTools(t *testing.T) {
	env := newTestEnv(t, func(path string, n int, body map[string]interface{}) (int, string) {
		return http.StatusInternalServerError, "boom"
	})

	_, _, err := env.gen.Generate(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, 1, env.backend.Calls("/rubrica"))
}

func TestMalformedJSONKeepsRawText(t *testing.T) {
	env := newTestEnv(t, func(path string, n int, body map[string]interface{}) (int, string) {
		if path == "/resumen" {
			return http.StatusOK, `"Un resumen breve."`
		}
		return http.StatusOK, "Lo siento, no pude generar la rúbrica"
	})

	_, a, err := env.gen.Generate(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)
	assert.Equal(t, "Lo siento, no pude generar la rúbrica", a.Content)
	assert.Equal(t, "Rúbrica", a.Title)

	_, s, err := env.gen.Generate(context.Background(), testEmail, workshop.ToolResumen, workshop.Fields{"texto": "La fotosíntesis..."})
	require.NoError(t, err)
	assert.Equal(t, "Un resumen breve.", s.Content)
}

func TestSubscribeAfterFinish(t *testing.T) {
	env := newTestEnv(t, func(path string, n int, body map[string]interface{}) (int, string) {
		return http.StatusOK, rubricJSON
	})

	tc, a, err := env.gen.Generate(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)

	_, history, unsubscribe, err := env.gen.Subscribe(tc.TaskID, testEmail)
	require.NoError(t, err)
	defer unsubscribe()
	require.NotEmpty(t, history)
	last := history[len(history)-1]
	assert.Equal(t, dto.EventFinished, last.Type)
	assert.Equal(t, a.ID, last.ArtifactID)

	_, _, _, err = env.gen.Subscribe(tc.TaskID, "beto@example.com")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestActiveTasksAndForceCancel(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	env := newTestEnv(t, func(path string, n int, body map[string]interface{}) (int, string) {
		<-release
		return http.StatusOK, rubricJSON
	})
	t.Cleanup(func() { once.Do(func() { close(release) }) })

	tc, err := env.gen.Submit(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)

	active := env.gen.ActiveTasks()
	require.Len(t, active, 1)
	assert.Equal(t, tc.TaskID, active[0].TaskID)
	assert.Equal(t, testEmail, active[0].Email)

	require.NoError(t, env.gen.ForceCancel(tc.TaskID))
	assert.Empty(t, env.gen.ActiveTasks())
	assert.ErrorIs(t, env.gen.ForceCancel("nope"), ErrTaskNotFound)

	once.Do(func() { close(release) })
	env.waitReleased(t, tc)

	page, err := env.gen.AllTasks("", models.TaskStatusCancelled, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}
