package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/clothify/storefront/internal/core/domain"
)

// sentDocuments returns the array under key of the last command sent.
func sentDocuments(mt *mtest.T, command, key string) []bson.Raw {
	mt.Helper()
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	require.Equal(mt, command, evt.CommandName)

	values, err := evt.Command.Lookup(key).Array().Values()
	require.NoError(mt, err)
	docs := make([]bson.Raw, 0, len(values))
	for _, v := range values {
		docs = append(docs, v.Document())
	}
	return docs
}

func TestAuthEventRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	at := time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC)

	mt.Run("write stores populated fields", func(mt *mtest.T) {
		repo := NewAuthEventRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Write(context.Background(), domain.AuthEvent{
			Type:       domain.EventLoginFailed,
			Email:      "ann@example.com",
			Reason:     "password mismatch",
			OccurredAt: at,
		})
		require.NoError(mt, err)

		docs := sentDocuments(mt, "insert", "documents")
		require.Len(mt, docs, 1)
		doc := docs[0]
		assert.Equal(mt, "login_failed", doc.Lookup("type").StringValue())
		assert.Equal(mt, "ann@example.com", doc.Lookup("email").StringValue())
		assert.Equal(mt, "password mismatch", doc.Lookup("reason").StringValue())
		assert.True(mt, at.Equal(doc.Lookup("occurred_at").Time()))

		_, err = doc.LookupErr("subject_id")
		assert.Error(mt, err, "empty subject id must not be stored")
	})

	mt.Run("write omits empty optional fields", func(mt *mtest.T) {
		repo := NewAuthEventRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.Write(context.Background(), domain.AuthEvent{
			Type:       domain.EventLoggedOut,
			SubjectID:  "u1",
			OccurredAt: at,
		}))

		doc := sentDocuments(mt, "insert", "documents")[0]
		assert.Equal(mt, "u1", doc.Lookup("subject_id").StringValue())
		for _, key := range []string{"email", "reason"} {
			_, err := doc.LookupErr(key)
			assert.Error(mt, err, key)
		}
	})

	mt.Run("write reports server errors", func(mt *mtest.T) {
		repo := NewAuthEventRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on storefront",
		}))

		err := repo.Write(context.Background(), domain.AuthEvent{Type: domain.EventRegistered, OccurredAt: at})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "insert auth event")
	})

	mt.Run("indexes include retention ttl", func(mt *mtest.T) {
		repo := NewAuthEventRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.EnsureIndexes(context.Background()))

		indexes := sentDocuments(mt, "createIndexes", "indexes")
		require.Len(mt, indexes, 2)

		_, err := indexes[0].LookupErr("expireAfterSeconds")
		assert.Error(mt, err, "lookup index must not expire documents")

		ttl := indexes[1].Lookup("expireAfterSeconds").Int32()
		assert.Equal(mt, int32(90*24*60*60), ttl)
		assert.Equal(mt, "occurred_at", indexes[1].Lookup("key").Document().Index(0).Key())
	})
}
