package repository

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"studio-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	db, err := models.OpenDB(filepath.Join(t.TempDir(), "studio.db"))
	require.NoError(t, err)
	return db
}

func TestGormKVRepository(t *testing.T) {
	repo := NewGormKVRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, "ana", "selectedDate")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = repo.Set(ctx, "ana", "selectedDate", "x", 3)
	assert.ErrorIs(t, err, ErrVersionMismatch)

	item, err := repo.Set(ctx, "ana", "selectedDate", "05/03/2024", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.Version)

	item, err = repo.Set(ctx, "ana", "selectedDate", "06/03/2024", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.Version)

	_, err = repo.Set(ctx, "ana", "selectedDate", "07/03/2024", 1)
	assert.ErrorIs(t, err, ErrVersionMismatch)

	// 同名键在不同命名空间互不影响
	_, err = repo.Set(ctx, "beto", "selectedDate", "01/01/2024", 0)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "ana", "selectedDate")
	require.NoError(t, err)
	assert.Equal(t, "06/03/2024", got.Value)

	require.NoError(t, repo.Delete(ctx, "ana", "selectedDate"))
	_, err = repo.Get(ctx, "ana", "selectedDate")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, repo.Clear(ctx, "beto"))
	_, err = repo.Get(ctx, "beto", "selectedDate")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestGormKVConcurrentWriters(t *testing.T) {
	repo := NewGormKVRepository(openTestDB(t))
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Set(ctx, "ana", "unitPlannerData", strconv.Itoa(i), 0)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	// 每次写入都生效，版本号等于写入次数
	got, err := repo.Get(ctx, "ana", "unitPlannerData")
	require.NoError(t, err)
	assert.Equal(t, int64(writers), got.Version)
}

func TestUnitRepositoryReplace(t *testing.T) {
	repo := NewUnitRepository(openTestDB(t))

	unit := &models.Unit{
		ID:           "u1",
		Email:        "ana@example.com",
		NombreUnidad: "Fracciones",
		Asignatura:   "Matemáticas",
		Nivel:        "5°",
		Lecciones:    models.Lessons{{Dia: 1, Fecha: "05/03/2024", Titulo: "Introducción"}},
	}
	require.NoError(t, repo.Create(unit))
	assert.Equal(t, int64(1), unit.Version)

	update := &models.Unit{
		ID:           "u1",
		Email:        "otro@example.com",
		NombreUnidad: "Fracciones equivalentes",
		Lecciones:    models.Lessons{{Dia: 1, Fecha: "06/03/2024", Titulo: "Repaso"}},
	}
	require.NoError(t, repo.Replace(update, 1))
	assert.Equal(t, int64(2), update.Version)

	got, err := repo.GetByID("u1")
	require.NoError(t, err)
	assert.Equal(t, "Fracciones equivalentes", got.NombreUnidad)
	assert.Equal(t, "ana@example.com", got.Email)
	require.Len(t, got.Lecciones, 1)
	assert.Equal(t, "06/03/2024", got.Lecciones[0].Fecha)

	// 旧版本写入被拒绝
	stale := &models.Unit{ID: "u1", NombreUnidad: "Viejo"}
	assert.ErrorIs(t, repo.Replace(stale, 1), ErrStaleVersion)

	// 不带版本时后写覆盖先写
	require.NoError(t, repo.Replace(&models.Unit{ID: "u1", NombreUnidad: "Último"}, 0))
	got, err = repo.GetByID("u1")
	require.NoError(t, err)
	assert.Equal(t, "Último", got.NombreUnidad)
	assert.Equal(t, int64(3), got.Version)

	assert.ErrorIs(t, repo.Replace(&models.Unit{ID: "nope"}, 0), gorm.ErrRecordNotFound)
}

func TestTaskRepositoryFindRecentFinished(t *testing.T) {
	repo := NewTaskRepository(openTestDB(t))
	now := time.Now()

	require.NoError(t, repo.Create(&models.GenerationTask{
		TaskID:         "t1",
		Email:          "ana@example.com",
		Tool:           "rubrica",
		IdempotencyKey: "k1",
		Status:         models.TaskStatusRunning,
		StartedAt:      now,
	}))

	_, err := repo.FindRecentFinished("ana@example.com", "k1", now.Add(-time.Minute))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Finish("t1", models.TaskStatusFinished, "a1", "", 1))

	task, err := repo.FindRecentFinished("ana@example.com", "k1", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "a1", task.ArtifactID)

	// 超出去重窗口
	_, err = repo.FindRecentFinished("ana@example.com", "k1", time.Now().Add(time.Minute))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	tasks, total, err := repo.ListByEmail("ana@example.com", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, tasks, 1)
}
