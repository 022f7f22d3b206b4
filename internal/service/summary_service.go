package service

import (
	"complykit/internal/cache"
	"complykit/internal/model"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SummaryFallback replaces the narrative when generation fails or is empty
const SummaryFallback = "Error: Failed to generate compliance summary. Please try again later."

// SummaryService generates the narrative compliance summary for a result.
// It never blocks classification: callers get the risk level first and the
// summary arrives over WebSocket or by polling.
type SummaryService struct {
	generator   Generator
	cache       cache.SummaryCache
	broadcaster Broadcaster
	group       singleflight.Group
	timeout     time.Duration
	log         *zap.Logger
}

// NewSummaryService creates a new summary service
func NewSummaryService(generator Generator, summaryCache cache.SummaryCache, timeout time.Duration, log *zap.Logger) *SummaryService {
	return &SummaryService{
		generator:   generator,
		cache:       summaryCache,
		broadcaster: noopBroadcaster{},
		timeout:     timeout,
		log:         log,
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *SummaryService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Request marks the summary pending and generates it in the background
func (s *SummaryService) Request(resultID string, answers model.AnswerSet, level model.RiskLevel) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)

	pending := &model.Summary{ResultID: resultID, Status: model.SummaryPending, UpdatedAt: time.Now()}
	if err := s.cache.Set(ctx, pending); err != nil {
		s.log.Warn("failed to store pending summary", zap.String("result_id", resultID), zap.Error(err))
	}

	answers = answers.Clone()
	go func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("panic in summary generation", zap.String("result_id", resultID), zap.Any("panic", r))
			}
		}()
		s.Generate(ctx, resultID, answers, level)
	}()
}

// Generate produces the summary for a result, sharing one in-flight request
// per result id. The returned summary is never nil.
func (s *SummaryService) Generate(ctx context.Context, resultID string, answers model.AnswerSet, level model.RiskLevel) *model.Summary {
	v, _, _ := s.group.Do(resultID, func() (interface{}, error) {
		summary := s.generate(ctx, resultID, answers, level)
		if err := s.cache.Set(ctx, summary); err != nil {
			s.log.Warn("failed to store summary", zap.String("result_id", resultID), zap.Error(err))
		}
		s.broadcaster.BroadcastToResult(resultID, MsgSummaryReady, summary)
		return summary, nil
	})
	return v.(*model.Summary)
}

func (s *SummaryService) generate(ctx context.Context, resultID string, answers model.AnswerSet, level model.RiskLevel) *model.Summary {
	summary := &model.Summary{ResultID: resultID}
	fp := Fingerprint(answers, level)

	if text, ok, err := s.cache.GetText(ctx, fp); err != nil {
		s.log.Warn("summary cache read failed", zap.Error(err))
	} else if ok {
		summary.Status = model.SummaryReady
		summary.Text = text
		summary.UpdatedAt = time.Now()
		return summary
	}

	text, err := s.generator.Generate(ctx, PurposeSummary, SummaryPrompt(answers, level))
	summary.UpdatedAt = time.Now()
	if err != nil || strings.TrimSpace(text) == "" {
		if err == nil {
			s.log.Warn("empty summary from generator", zap.String("result_id", resultID))
		}
		summary.Status = model.SummaryFailed
		summary.Text = SummaryFallback
		return summary
	}

	summary.Status = model.SummaryReady
	summary.Text = text
	if err := s.cache.SetText(ctx, fp, text); err != nil {
		s.log.Warn("failed to cache summary text", zap.Error(err))
	}
	return summary
}

// Get returns the stored summary for a result, nil when none was requested
func (s *SummaryService) Get(ctx context.Context, resultID string) (*model.Summary, error) {
	return s.cache.Get(ctx, resultID)
}

// Fingerprint identifies an (answers, level) pair. encoding/json sorts map
// keys, so equal answer sets always hash the same.
func Fingerprint(answers model.AnswerSet, level model.RiskLevel) string {
	if answers == nil {
		answers = model.AnswerSet{}
	}
	data, _ := json.Marshal(answers)
	h := sha256.New()
	h.Write([]byte(level))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SummaryPrompt builds the summary request for Gemini
func SummaryPrompt(answers model.AnswerSet, level model.RiskLevel) string {
	data, _ := json.Marshal(answers)
	return fmt.Sprintf(`Generate a really short AI compliance summary based on the EU AI Act with everything important, so we can provide value to our customers.
Do not focus on the specific position the user holds.
- Risk level: %s
- Questionnaire answers: %s
The response has to contain:
- A list of the most important things to consider
- A list of the most important things to avoid
- Next steps
- Whatever other value you can provide for the customer according to their situation
Format the response in a clear, professional manner, but friendly and in readable language, not legalese.
You have 500 output tokens, so keep it short.`, level, data)
}
