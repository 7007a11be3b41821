package services

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/tasket/tasket-server/internal/models"
	"github.com/tasket/tasket-server/internal/repository"
	"github.com/tasket/tasket-server/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestSweeperStartStop(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Task{}))

	log := logrus.New()
	log.SetOutput(io.Discard)

	local, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	trash := NewTrashService(
		repository.NewTaskRepository(db),
		storage.NewCleaner(nil, local, log),
		nil,
		log,
	)

	sweeper := NewSweeper(trash, 30, log)
	require.NoError(t, sweeper.Start())

	done := sweeper.Stop().Done()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
