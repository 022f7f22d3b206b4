package repository

import (
	"complykit/internal/model"
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// setupMongo connects to MONGO_TEST_URI and returns a throwaway database
func setupMongo(t *testing.T) *mongo.Database {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database("complykit_test_" + uuid.New().String()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestResultRepo_CreateAndList(t *testing.T) {
	db := setupMongo(t)
	repo := NewResultRepo(db)
	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes(ctx))

	older := &model.QuestionnaireResult{
		UserID:    "u1",
		Timestamp: time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond),
		Answers:   model.AnswerSet{"uses_ai": model.Scalar("No")},
		RiskLevel: model.RiskOutOfScope,
	}
	newer := &model.QuestionnaireResult{
		UserID:    "u1",
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Answers:   model.AnswerSet{"uses_ai": model.Scalar("Yes"), "use_areas": model.List("Education")},
		Score:     33,
		RiskLevel: model.RiskLimited,
	}

	_, err := repo.Create(ctx, older)
	require.NoError(t, err)
	id, err := repo.Create(ctx, newer)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.RiskLimited, got.RiskLevel)
	assert.True(t, got.Answers["use_areas"].IsList())
	assert.Equal(t, []string{"Education"}, got.Answers.List("use_areas"))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, id, list[0].ID)

	latest, err := repo.LatestByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, id, latest.ID)

	none, err := repo.LatestByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, none)

	missing, err := repo.GetByID(ctx, "not-an-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestResultRepo_CreateIsIdempotentPerSubmission(t *testing.T) {
	db := setupMongo(t)
	repo := NewResultRepo(db)
	ctx := context.Background()
	require.NoError(t, repo.EnsureIndexes(ctx))

	result := &model.QuestionnaireResult{
		UserID:       "u1",
		SubmissionID: "entry-1",
		Timestamp:    time.Now().UTC().Truncate(time.Millisecond),
		Answers:      model.AnswerSet{"uses_ai": model.Scalar("No")},
		RiskLevel:    model.RiskOutOfScope,
	}
	first, err := repo.Create(ctx, result)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	again, err := repo.Create(ctx, result)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// Another user may reuse the id
	other := *result
	other.UserID = "u2"
	otherID, err := repo.Create(ctx, &other)
	require.NoError(t, err)
	assert.NotEqual(t, first, otherID)

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "entry-1", list[0].SubmissionID)
}

func TestDocumentRepo_Upsert(t *testing.T) {
	db := setupMongo(t)
	repo := NewDocumentRepo(db)
	ctx := context.Background()

	doc := &model.GeneratedDocument{UserID: "u1", Kind: model.DocumentRiskPolicy, Content: "v1", CreatedAt: time.Now()}
	require.NoError(t, repo.Save(ctx, doc))
	doc.Content = "v2"
	require.NoError(t, repo.Save(ctx, doc))

	got, err := repo.Get(ctx, "u1", model.DocumentRiskPolicy)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)

	all, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
