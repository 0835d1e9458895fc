package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"studio-go/internal/models"
	"studio-go/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageService(t *testing.T) {
	db, err := models.OpenDB(filepath.Join(t.TempDir(), "studio.db"))
	require.NoError(t, err)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewStorageService(repository.NewGormKVRepository(db), logger)
	ctx := context.Background()

	_, err = svc.Set(ctx, testEmail, "  ", "x", 0)
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = svc.Get(ctx, testEmail, strings.Repeat("k", 201))
	assert.ErrorIs(t, err, ErrInvalidKey)

	item, err := svc.Set(ctx, testEmail, "selectedDate", "05/03/2024", 0)
	require.NoError(t, err)

	_, err = svc.Set(ctx, testEmail, "selectedDate", "06/03/2024", item.Version+1)
	assert.ErrorIs(t, err, repository.ErrVersionMismatch)

	got, err := svc.Get(ctx, testEmail, "selectedDate")
	require.NoError(t, err)
	assert.Equal(t, "05/03/2024", got.Value)

	require.NoError(t, svc.Clear(ctx, testEmail))
	_, err = svc.Get(ctx, testEmail, "selectedDate")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}
