package service

import (
	"complykit/internal/cache"
	"complykit/internal/metrics"
	"complykit/internal/model"
	"complykit/internal/repository"
	"complykit/internal/risk"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// pendingIDPrefix marks result ids that were never assigned by the store
const pendingIDPrefix = "pending-"

// Submission is the outcome of storing a classified answer set
type Submission struct {
	Result    *model.QuestionnaireResult `json:"result"`
	Persisted bool                       `json:"persisted"` // false while held in the pending cache
}

// ReplayStats reports a pending replay
type ReplayStats struct {
	Replayed  int `json:"replayed"`
	Remaining int `json:"remaining"`
}

// ResultService persists results and replays pending ones once the owner
// is known
type ResultService struct {
	repo    repository.ResultRepo
	pending cache.PendingCache
	latest  cache.LatestCache
	log     *zap.Logger
	now     func() time.Time
}

// NewResultService creates a new result service
func NewResultService(repo repository.ResultRepo, pending cache.PendingCache, latest cache.LatestCache, log *zap.Logger) *ResultService {
	return &ResultService{
		repo:    repo,
		pending: pending,
		latest:  latest,
		log:     log,
		now:     time.Now,
	}
}

// Submit stores a classified answer set for owner. It never fails: when the
// store is unavailable, or the owner is anonymous, the result is queued in
// the pending cache and Persisted is false. Submitting the same
// submissionID again returns the stored result instead of a copy; an empty
// submissionID gets a fresh one.
func (s *ResultService) Submit(ctx context.Context, owner model.Owner, submissionID string, answers model.AnswerSet, level model.RiskLevel) *Submission {
	if submissionID == "" {
		submissionID = uuid.New().String()
	}
	result := &model.QuestionnaireResult{
		UserID:       owner.UserID,
		SubmissionID: submissionID,
		Timestamp:    s.now().UTC(),
		Answers:      answers.Clone(),
		Score:        risk.Score(answers),
		RiskLevel:    level,
	}
	sub := &Submission{Result: result}

	if owner.IsAuthenticated() {
		id, err := s.repo.Create(ctx, result)
		if err == nil {
			result.ID = id
			sub.Persisted = true
		} else {
			metrics.PersistenceFallbacks.Inc()
			s.log.Warn("failed to store result, queued as pending",
				zap.String("user_id", owner.UserID), zap.Error(err))
		}
	}

	if !sub.Persisted {
		result.ID = pendingIDPrefix + uuid.New().String()
		if owner.IsAuthenticated() || owner.ClientID != "" {
			if err := s.pending.Push(ctx, owner.Key(), result); err != nil {
				s.log.Error("failed to queue pending result", zap.String("owner", owner.Key()), zap.Error(err))
			}
		} else {
			s.log.Debug("anonymous submission without client id, not queued")
		}
	}

	// Without a user or client id there is no key to cache under
	if owner.IsAuthenticated() || owner.ClientID != "" {
		latest := &model.LatestSubmission{
			ResultID:    result.ID,
			Answers:     result.Answers,
			RiskLevel:   level,
			SubmittedAt: result.Timestamp,
		}
		if err := s.latest.Set(ctx, owner.Key(), latest); err != nil {
			s.log.Warn("failed to store latest submission", zap.String("owner", owner.Key()), zap.Error(err))
		}
	}

	return sub
}

// ReplayPending moves the client's pending results, and the user's failed
// writes, into the store under userID. Entries that fail to store stay
// queued under the user.
func (s *ResultService) ReplayPending(ctx context.Context, userID, clientID string) (*ReplayStats, error) {
	if userID == "" {
		return nil, errors.New("replay requires a user")
	}

	userKey := model.Owner{UserID: userID}.Key()
	keys := []string{userKey}
	if clientID != "" {
		keys = append(keys, model.Owner{ClientID: clientID}.Key())
	}

	stats := &ReplayStats{}
	var latest *model.QuestionnaireResult
	for _, key := range keys {
		entries, err := s.pending.Drain(ctx, key)
		if err != nil {
			return stats, fmt.Errorf("failed to drain %s: %w", key, err)
		}

		for _, r := range entries {
			r.UserID = userID
			r.ID = ""
			id, err := s.repo.Create(ctx, r)
			if err != nil {
				metrics.PendingReplayed.WithLabelValues("failed").Inc()
				s.log.Warn("pending replay failed", zap.String("user_id", userID), zap.Error(err))
				r.ID = pendingIDPrefix + uuid.New().String()
				if perr := s.pending.Push(ctx, userKey, r); perr != nil {
					s.log.Error("lost pending result", zap.String("user_id", userID), zap.Error(perr))
					continue
				}
				stats.Remaining++
				continue
			}
			r.ID = id
			stats.Replayed++
			metrics.PendingReplayed.WithLabelValues("stored").Inc()
			if latest == nil || r.Timestamp.After(latest.Timestamp) {
				latest = r
			}
		}
	}

	if latest != nil {
		backup, _ := s.latest.Get(ctx, userKey)
		if backup == nil || latest.Timestamp.After(backup.SubmittedAt) {
			err := s.latest.Set(ctx, userKey, &model.LatestSubmission{
				ResultID:    latest.ID,
				Answers:     latest.Answers,
				RiskLevel:   latest.RiskLevel,
				SubmittedAt: latest.Timestamp,
			})
			if err != nil {
				s.log.Warn("failed to store latest submission", zap.String("owner", userKey), zap.Error(err))
			}
		}
		s.log.Info("pending results replayed", zap.String("user_id", userID), zap.Int("count", stats.Replayed))
	}
	return stats, nil
}

// History returns every stored result for a user, newest first
func (s *ResultService) History(ctx context.Context, userID string) ([]*model.QuestionnaireResult, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Latest returns the user's newest result. When the store has none it falls
// back to the cached latest submission.
func (s *ResultService) Latest(ctx context.Context, userID string) (*model.QuestionnaireResult, error) {
	result, err := s.repo.LatestByUser(ctx, userID)
	if err != nil {
		s.log.Warn("latest result lookup failed, trying cache", zap.String("user_id", userID), zap.Error(err))
	}
	if result != nil {
		return result, nil
	}

	backup, cerr := s.latest.Get(ctx, model.Owner{UserID: userID}.Key())
	if cerr != nil {
		s.log.Warn("latest submission cache read failed", zap.Error(cerr))
	}
	if backup != nil {
		return &model.QuestionnaireResult{
			ID:        backup.ResultID,
			UserID:    userID,
			Timestamp: backup.SubmittedAt,
			Answers:   backup.Answers,
			Score:     risk.Score(backup.Answers),
			RiskLevel: backup.RiskLevel,
		}, nil
	}

	if err != nil {
		return nil, err
	}
	return nil, ErrNoQuestionnaire
}

// PendingCount returns how many results are queued for an owner
func (s *ResultService) PendingCount(ctx context.Context, owner model.Owner) (int64, error) {
	return s.pending.Count(ctx, owner.Key())
}
