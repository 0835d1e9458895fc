package youtube_search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestSearcher(t *testing.T, handler http.HandlerFunc) *Searcher {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewSearcher(context.Background(), "test-key", 5, logrus.New(),
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return s
}

func TestSearch(t *testing.T) {
	var gotQuery, gotKey string
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":{"kind":"youtube#video","videoId":"abc123"},"snippet":{"title":"Fracciones","channelTitle":"Profe","thumbnails":{"medium":{"url":"http://img/m.jpg"}}}},
			{"id":{"kind":"youtube#channel","channelId":"c1"},"snippet":{"title":"Canal"}}
		]}`))
	})

	videos, err := s.Search(context.Background(), " fracciones ", 0)
	require.NoError(t, err)
	assert.Equal(t, "fracciones", gotQuery)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, videos, 1)
	assert.Equal(t, "abc123", videos[0].ID)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", videos[0].URL)
	assert.Equal(t, "http://img/m.jpg", videos[0].Thumbnail)
}

func TestSearchEmptyQuery(t *testing.T) {
	called := false
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	videos, err := s.Search(context.Background(), "  ", 3)
	require.NoError(t, err)
	assert.Empty(t, videos)
	assert.False(t, called)
}

func TestSearchBackendError(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quota"}}`))
	})

	_, err := s.Search(context.Background(), "algebra", 3)
	assert.Error(t, err)
}

func TestNewSearcherWithoutKey(t *testing.T) {
	_, err := NewSearcher(context.Background(), "", 5, logrus.New())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
