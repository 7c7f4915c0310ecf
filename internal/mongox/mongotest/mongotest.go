// Package mongotest starts a throwaway MongoDB for store tests.
package mongotest

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-pethotel-pos/internal/mongox"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
)

// New returns a database in a fresh mongo:7 container. The test is skipped
// when no container runtime is reachable.
func New(t *testing.T) *mongo.Database {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := mongox.Connect(ctx, uri, "testdb")
	require.NoError(t, err)
	t.Cleanup(func() { mongox.Disconnect(db) })
	return db
}
