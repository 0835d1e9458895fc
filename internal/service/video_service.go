package service

import (
	"context"

	"studio-go/pkg/youtube_search"
)

// VideoSearcher 视频搜索
type VideoSearcher interface {
	Search(ctx context.Context, query string, max int64) ([]youtube_search.Video, error)
}

// VideoService 教学视频搜索，未配置密钥时 searcher 为nil
type VideoService struct {
	searcher VideoSearcher
}

// NewVideoService 创建视频搜索服务
func NewVideoService(searcher VideoSearcher) *VideoService {
	return &VideoService{searcher: searcher}
}

// Search 搜索视频
func (s *VideoService) Search(ctx context.Context, query string, max int64) ([]youtube_search.Video, error) {
	if s.searcher == nil {
		return nil, youtube_search.ErrNotConfigured
	}
	return s.searcher.Search(ctx, query, max)
}
