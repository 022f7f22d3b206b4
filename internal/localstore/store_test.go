package localstore

import (
	"complykit/internal/model"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	return Open(filepath.Join(t.TempDir(), "nested", "pending.json"))
}

func TestStore_AddListClear(t *testing.T) {
	s := newStore(t)

	entries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	id, err := s.Add(&model.QuestionnaireResult{
		Answers:   model.AnswerSet{"data_types": model.List("Voice patterns")},
		RiskLevel: model.RiskHigh,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entries, err = s.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, model.RiskHigh, entries[0].Result.RiskLevel)
	assert.Equal(t, []string{"Voice patterns"}, entries[0].Result.Answers.List("data_types"))

	require.NoError(t, s.Clear())
	entries, err = s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_UpdateErrorLeavesFileUntouched(t *testing.T) {
	s := newStore(t)
	_, err := s.Add(&model.QuestionnaireResult{RiskLevel: model.RiskMinimal})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Update(func(entries []Entry) ([]Entry, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	entries, err := s.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_ConcurrentAdds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Separate handles contend on the lock file like separate processes.
			_, err := Open(path).Add(&model.QuestionnaireResult{RiskLevel: model.RiskLimited})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := Open(path).List()
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}

func TestStore_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	_, err := Open(path).List()
	assert.Error(t, err)
}

func TestStore_RejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":99,"entries":[]}`), 0o600))

	_, err := Open(path).List()
	assert.Error(t, err)
}

func TestStore_RemoveKeepsOthers(t *testing.T) {
	s := newStore(t)
	first, err := s.Add(&model.QuestionnaireResult{RiskLevel: model.RiskHigh})
	require.NoError(t, err)
	second, err := s.Add(&model.QuestionnaireResult{RiskLevel: model.RiskMinimal})
	require.NoError(t, err)

	require.NoError(t, s.Remove(first))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, second, entries[0].ID)
}

func TestStore_ClientIDIsStable(t *testing.T) {
	s := newStore(t)

	id, err := s.ClientID()
	require.NoError(t, err)
	require.NotEmpty(t, id)

	again, err := Open(s.Path()).ClientID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}
