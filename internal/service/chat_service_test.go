package service

import (
	"context"
	"net/http"
	"testing"

	"studio-go/internal/models"
	"studio-go/internal/workshop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const improvedJSON = `{"titulo":"Rúbrica mejorada","criterios":[{"criterio":"Comprensión","niveles":{"excelente":"Explica con claridad"}},{"criterio":"Aplicación","niveles":{"excelente":"Explica con claridad"}}]}`

func newChatEnv(t *testing.T, improveReply string) *testEnv {
	return newTestEnv(t, func(path string, n int, body map[string]interface{}) (int, string) {
		switch path {
		case "/rubrica":
			return http.StatusOK, rubricJSON
		case "/mejorar-contenido":
			return http.StatusOK, improveReply
		}
		return http.StatusNotFound, ""
	})
}

func TestImproveApplied(t *testing.T) {
	env := newChatEnv(t, "Aquí está la versión mejorada:\n```json\n"+improvedJSON+"\n```")

	_, a, err := env.gen.Generate(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)

	resp, err := env.chat.Improve(context.Background(), testEmail, a.ID, "  agrega un criterio de aplicación ")
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Equal(t, improvedJSON, resp.Artifact.Content)
	assert.Equal(t, "Rúbrica mejorada", resp.Artifact.Title)
	assert.Equal(t, models.SourceChatRevision, resp.Artifact.Source)
	assert.Equal(t, 2, resp.Artifact.Revision)

	require.Len(t, resp.History, 2)
	assert.Equal(t, RoleUser, resp.History[0].Role)
	assert.Equal(t, "agrega un criterio de aplicación", resp.History[0].Content)
	assert.Equal(t, RoleAssistant, resp.History[1].Role)
	assert.True(t, resp.History[1].Applied)

	body := env.backend.Body("/mejorar-contenido", 0)
	assert.Equal(t, rubricJSON, body["contenido"])
	assert.Equal(t, workshop.ToolRubrica, body["herramienta"])
	assert.Equal(t, testEmail, body["email"])

	stored, err := env.artifacts.GetByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, improvedJSON, stored.Content)
}

func TestImproveNotAppliedKeepsArtifact(t *testing.T) {
	env := newChatEnv(t, "No entendí la instrucción")

	_, a, err := env.gen.Generate(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)

	resp, err := env.chat.Improve(context.Background(), testEmail, a.ID, "hazlo mejor")
	require.NoError(t, err)
	assert.False(t, resp.Applied)
	assert.Equal(t, "No entendí la instrucción", resp.Reply)
	assert.Equal(t, rubricJSON, resp.Artifact.Content)
	assert.Equal(t, 1, resp.Artifact.Revision)
	assert.Equal(t, models.SourceGenerated, resp.Artifact.Source)
	require.Len(t, resp.History, 2)
	assert.False(t, resp.History[1].Applied)
}

func TestImproveValidation(t *testing.T) {
	env := newChatEnv(t, improvedJSON)

	_, a, err := env.gen.Generate(context.Background(), testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)

	_, err = env.chat.Improve(context.Background(), testEmail, a.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyInstruction)

	_, err = env.chat.Improve(context.Background(), "beto@example.com", a.ID, "mejora")
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	env.backend.setAccess(true, false, "Plan gratuito")
	_, err = env.chat.Improve(context.Background(), testEmail, a.ID, "mejora")
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, 0, env.backend.Calls("/mejorar-contenido"))
}

func TestNewArtifactClearsPreviousChat(t *testing.T) {
	env := newChatEnv(t, improvedJSON)
	ctx := context.Background()

	tc1, first, err := env.gen.Generate(ctx, testEmail, workshop.ToolRubrica, rubricFields("Fracciones"))
	require.NoError(t, err)
	env.waitReleased(t, tc1)

	_, err = env.chat.Improve(ctx, testEmail, first.ID, "agrega un criterio")
	require.NoError(t, err)
	_, err = env.chat.Improve(ctx, testEmail, first.ID, "simplifica el lenguaje")
	require.NoError(t, err)

	// 改进结果不清空对话
	history, err := env.chat.History(first.ID, testEmail)
	require.NoError(t, err)
	assert.Len(t, history, 4)

	tc2, second, err := env.gen.Generate(ctx, testEmail, workshop.ToolRubrica, rubricFields("Decimales"))
	require.NoError(t, err)
	env.waitReleased(t, tc2)

	history, err = env.chat.History(first.ID, testEmail)
	require.NoError(t, err)
	assert.Empty(t, history)

	item, err := env.kv.Get(ctx, testEmail, chatKey(workshop.ToolRubrica))
	require.NoError(t, err)
	assert.Equal(t, second.ID, item.Value)
}
