package sqlite_test

import (
	"testing"

	"github.com/randallong/irentstuff-transactions/internal/domain"
	"github.com/randallong/irentstuff-transactions/internal/domain/runrepotest"
	"github.com/randallong/irentstuff-transactions/internal/infrastructure/sqlite"
)

func TestRunRepo(t *testing.T) {
	runrepotest.Run(t, func(t *testing.T) domain.RunRepository {
		db := sqlite.OpenTestDB(t)
		return &sqlite.RunRepo{DB: db}
	})
}
