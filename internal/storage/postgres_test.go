package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/0x0BSoD/mnaScraper/internal/model"
)

// Runs against a throwaway Postgres container; needs Docker and MNA_PG_IT=1.
func TestPostgresStoreSkipsDuplicates(t *testing.T) {
	if testing.Short() || os.Getenv("MNA_PG_IT") != "1" {
		t.Skip("set MNA_PG_IT=1 to run the Postgres integration test")
	}

	ctx := context.Background()

	testcontainers.Logger = log.New(io.Discard, "", 0)

	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "news",
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, pg.Terminate(ctx))
	}()

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/news?sslmode=disable", host, port.Port())

	s, err := NewArticleStorage(DriverPostgres, dsn, newsTable)
	require.NoError(t, err)
	require.NoError(t, s.EnsureTable(ctx))
	require.NoError(t, s.EnsureTable(ctx))

	article := model.Article{
		Title:       "Empresa recebe Aporte de R$10M",
		Summary:     "Sem resumo",
		Term:        "Aporte",
		PublishedAt: time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC),
	}

	n, err := s.Store(ctx, []model.Article{article, article})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.Store(ctx, []model.Article{article})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
