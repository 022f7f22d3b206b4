package service

import (
	"complykit/internal/cache"
	"complykit/internal/model"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store unavailable")

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// resultStore is an in-memory ResultRepo that can be switched off
type resultStore struct {
	mu      sync.Mutex
	down    bool
	results []*model.QuestionnaireResult
}

func (r *resultStore) setDown(down bool) {
	r.mu.Lock()
	r.down = down
	r.mu.Unlock()
}

func (r *resultStore) Create(_ context.Context, result *model.QuestionnaireResult) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		return "", errStoreDown
	}
	for _, res := range r.results {
		if result.SubmissionID != "" && res.UserID == result.UserID && res.SubmissionID == result.SubmissionID {
			return res.ID, nil
		}
	}
	doc := *result
	doc.ID = fmt.Sprintf("r%d", len(r.results)+1)
	r.results = append(r.results, &doc)
	return doc.ID, nil
}

func (r *resultStore) GetByID(_ context.Context, id string) (*model.QuestionnaireResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.results {
		if res.ID == id {
			return res, nil
		}
	}
	return nil, nil
}

func (r *resultStore) ListByUser(_ context.Context, userID string) ([]*model.QuestionnaireResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		return nil, errStoreDown
	}
	out := []*model.QuestionnaireResult{}
	for _, res := range r.results {
		if res.UserID == userID {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r *resultStore) LatestByUser(ctx context.Context, userID string) (*model.QuestionnaireResult, error) {
	list, err := r.ListByUser(ctx, userID)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *resultStore) EnsureIndexes(context.Context) error { return nil }

type documentStore struct {
	mu   sync.Mutex
	docs map[string]*model.GeneratedDocument
}

func (d *documentStore) Save(_ context.Context, doc *model.GeneratedDocument) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.docs == nil {
		d.docs = make(map[string]*model.GeneratedDocument)
	}
	d.docs[doc.UserID+"/"+string(doc.Kind)] = doc
	return nil
}

func (d *documentStore) Get(_ context.Context, userID string, kind model.DocumentKind) (*model.GeneratedDocument, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.docs[userID+"/"+string(kind)], nil
}

func (d *documentStore) ListByUser(_ context.Context, userID string) ([]*model.GeneratedDocument, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*model.GeneratedDocument
	for _, doc := range d.docs {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	return out, nil
}

// stubGenerator returns a fixed reply and counts calls. A non-nil gate
// blocks every call until it is closed.
type stubGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	gate    chan struct{}
	calls   int
	prompts []string
}

func (g *stubGenerator) Generate(ctx context.Context, purpose Purpose, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	gate := g.gate
	g.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.text, g.err
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type broadcast struct {
	resultID string
	msgType  string
	payload  interface{}
}

type recordingBroadcaster struct {
	ch chan broadcast
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{ch: make(chan broadcast, 16)}
}

func (b *recordingBroadcaster) BroadcastToResult(resultID, msgType string, payload interface{}) {
	b.ch <- broadcast{resultID: resultID, msgType: msgType, payload: payload}
}

func (b *recordingBroadcaster) next(t *testing.T) broadcast {
	t.Helper()
	select {
	case m := <-b.ch:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast received")
		return broadcast{}
	}
}

func newResultService(t *testing.T, repo *resultStore) *ResultService {
	rdb := setupRedis(t)
	return NewResultService(repo, cache.NewPendingCache(rdb, time.Hour), cache.NewLatestCache(rdb, time.Hour), zap.NewNop())
}
