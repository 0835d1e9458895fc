package youtube_search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ErrNotConfigured 未配置API密钥
var ErrNotConfigured = errors.New("未配置视频搜索密钥")

// Video 搜索结果
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channel_title"`
	Thumbnail    string `json:"thumbnail"`
	URL          string `json:"url"`
	PublishedAt  string `json:"published_at"`
}

// Searcher 基于 YouTube Data API v3 的视频搜索，密钥只保存在服务端
type Searcher struct {
	svc        *youtube.Service
	maxResults int64
	logger     logrus.FieldLogger
}

// NewSearcher 创建视频搜索客户端，apiKey为空时返回 ErrNotConfigured
func NewSearcher(ctx context.Context, apiKey string, maxResults int64, logger logrus.FieldLogger, opts ...option.ClientOption) (*Searcher, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("创建YouTube客户端失败: %w", err)
	}
	if maxResults <= 0 {
		maxResults = 8
	}
	return &Searcher{svc: svc, maxResults: maxResults, logger: logger}, nil
}

// Search 搜索教学视频，max<=0时使用默认数量
func (s *Searcher) Search(ctx context.Context, query string, max int64) ([]Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Video{}, nil
	}
	if max <= 0 || max > 50 {
		max = s.maxResults
	}

	resp, err := s.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		SafeSearch("strict").
		MaxResults(max).
		Context(ctx).
		Do()
	if err != nil {
		s.logger.WithField("query", query).WithError(err).Warn("[YouTubeSearch] 搜索失败")
		return nil, fmt.Errorf("视频搜索失败: %w", err)
	}

	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		v := Video{
			ID:           item.Id.VideoId,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ChannelTitle: item.Snippet.ChannelTitle,
			URL:          "https://www.youtube.com/watch?v=" + item.Id.VideoId,
			PublishedAt:  item.Snippet.PublishedAt,
		}
		if th := item.Snippet.Thumbnails; th != nil {
			switch {
			case th.Medium != nil:
				v.Thumbnail = th.Medium.Url
			case th.Default != nil:
				v.Thumbnail = th.Default.Url
			}
		}
		videos = append(videos, v)
	}

	s.logger.WithFields(logrus.Fields{"query": query, "count": len(videos)}).Debug("[YouTubeSearch] 搜索完成")
	return videos, nil
}
