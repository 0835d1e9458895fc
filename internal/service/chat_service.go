package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studio-go/internal/artifact"
	"studio-go/internal/config"
	"studio-go/internal/dto"
	"studio-go/internal/models"
	"studio-go/internal/repository"
	"studio-go/pkg/backend_caller"

	"github.com/sirupsen/logrus"
)

// ErrEmptyInstruction 改进指令为空
var ErrEmptyInstruction = errors.New("改进指令不能为空")

// 对话角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// chatKey 记录工具当前制品的键
func chatKey(tool string) string {
	return "chat:" + tool
}

// ChatService 制品对话改进
type ChatService struct {
	artifactRepo *repository.ArtifactRepository
	chatRepo     *repository.ChatRepository
	kv           repository.KVRepository
	tools        *ToolService
	caller       *backend_caller.BackendCaller
	access       AccessChecker
	cfg          *config.Config
	logger       *logrus.Logger
}

// NewChatService 创建对话改进服务
func NewChatService(
	artifactRepo *repository.ArtifactRepository,
	chatRepo *repository.ChatRepository,
	kv repository.KVRepository,
	tools *ToolService,
	caller *backend_caller.BackendCaller,
	access AccessChecker,
	cfg *config.Config,
	logger *logrus.Logger,
) *ChatService {
	return &ChatService{
		artifactRepo: artifactRepo,
		chatRepo:     chatRepo,
		kv:           kv,
		tools:        tools,
		caller:       caller,
		access:       access,
		cfg:          cfg,
		logger:       logger,
	}
}

// improveRequest 改进接口请求体
type improveRequest struct {
	Contenido   string `json:"contenido"`
	Instruccion string `json:"instruccion"`
	Email       string `json:"email"`
	Herramienta string `json:"herramienta"`
}

// Improve 按指令改进制品
// JSON类制品的回复无法解析时保留原内容，applied为false
func (s *ChatService) Improve(ctx context.Context, email, artifactID, instruction string) (*dto.ChatResponse, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, ErrEmptyInstruction
	}

	m, err := loadArtifact(s.artifactRepo, artifactID, email)
	if err != nil {
		return nil, err
	}
	if _, err := Require(ctx, s.access, email); err != nil {
		return nil, err
	}

	tool, err := s.tools.Resolve(m.Tool)
	if err != nil {
		return nil, err
	}
	path := tool.ImprovePath
	if path == "" {
		path = s.cfg.Backend.ImprovePath
	}

	log := s.logger.WithFields(logrus.Fields{"email": email, "artifact_id": artifactID, "tool": m.Tool})

	timeout := tool.Timeout
	if timeout <= 0 {
		timeout = s.cfg.Backend.GetTimeout()
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := s.caller.PostJSON(callCtx, path, improveRequest{
		Contenido:   m.Content,
		Instruccion: instruction,
		Email:       email,
		Herramienta: m.Tool,
	}, nil)
	if err != nil {
		log.WithError(err).Warn("[ImproveArtifact] 请求改进失败")
		return nil, fmt.Errorf("请求改进失败: %w", err)
	}

	reply := strings.TrimSpace(string(resp.Body))
	decoded := artifact.Decode(artifact.Kind(m.Kind), reply)
	applied := !decoded.Malformed && strings.TrimSpace(decoded.Text) != ""

	if applied {
		m.Content = decoded.Text
		if decoded.Title != "" {
			m.Title = decoded.Title
		}
		m.Source = models.SourceChatRevision
		m.Revision++
		if err := s.artifactRepo.Update(m); err != nil {
			log.WithError(err).Error("[ImproveArtifact] 保存改进结果失败")
			return nil, fmt.Errorf("保存改进结果失败: %w", err)
		}
	} else {
		log.Warn("[ImproveArtifact] 回复不是有效内容，保留原制品")
	}

	if err := s.chatRepo.CreateBatch([]models.ChatMessage{
		{ArtifactID: m.ID, Email: email, Role: RoleUser, Content: instruction},
		{ArtifactID: m.ID, Email: email, Role: RoleAssistant, Content: reply, Applied: applied},
	}); err != nil {
		log.WithError(err).Warn("[ImproveArtifact] 保存对话记录失败")
	}

	history, err := s.History(m.ID, email)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"applied": applied, "revision": m.Revision}).Info("[ImproveArtifact] 改进完成")
	return &dto.ChatResponse{
		Applied:  applied,
		Reply:    reply,
		Artifact: ToArtifactResponse(m),
		History:  history,
	}, nil
}

// History 制品的对话历史
func (s *ChatService) History(artifactID, email string) ([]dto.ChatMessageResponse, error) {
	if _, err := loadArtifact(s.artifactRepo, artifactID, email); err != nil {
		return nil, err
	}
	messages, err := s.chatRepo.ListByArtifact(artifactID)
	if err != nil {
		return nil, err
	}
	history := make([]dto.ChatMessageResponse, len(messages))
	for i, msg := range messages {
		history[i] = dto.ChatMessageResponse{
			Role:      msg.Role,
			Content:   msg.Content,
			Applied:   msg.Applied,
			CreatedAt: msg.CreatedAt,
		}
	}
	return history, nil
}

// OnArtifact 新生成的制品取代工具当前制品时清空旧对话，改进结果不触发清空
func (s *ChatService) OnArtifact(ctx context.Context, a *models.Artifact) {
	if a.Source != models.SourceGenerated {
		return
	}
	log := s.logger.WithFields(logrus.Fields{"email": a.Email, "tool": a.Tool, "artifact_id": a.ID})

	prev, err := s.kv.Get(ctx, a.Email, chatKey(a.Tool))
	switch {
	case err == nil && prev.Value != a.ID:
		if err := s.chatRepo.DeleteByArtifact(prev.Value); err != nil {
			log.WithError(err).Warn("[OnArtifact] 清空旧对话失败")
		}
	case err != nil && !errors.Is(err, repository.ErrKeyNotFound):
		log.WithError(err).Warn("[OnArtifact] 读取当前制品失败")
	}

	if _, err := s.kv.Set(ctx, a.Email, chatKey(a.Tool), a.ID, 0); err != nil {
		log.WithError(err).Warn("[OnArtifact] 记录当前制品失败")
	}
}
