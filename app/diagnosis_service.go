package app

import (
	"context"

	"medibot/domain/diagnosis"
	"medibot/internal"
	"medibot/internal/catalog"
	"medibot/internal/classifier"
	"medibot/internal/errors"
	"medibot/internal/session"
	"medibot/internal/triage"
	"medibot/ports"
)

// DiagnosisService answers symptom queries from a fitted model
type DiagnosisService struct {
	model   *classifier.Model
	catalog *catalog.Catalog
	backend ports.DiagnosisBackend // optional
	topK    int
	logger  *internal.Logger
}

// DiagnosisResult is what a user sees for one session
type DiagnosisResult struct {
	SessionID  string                   `json:"session_id"`
	Items      []diagnosis.Item         `json:"items"`
	Recognized []string                 `json:"recognized"`
	Ranking    classifier.Ranking       `json:"ranking"`
	Matches    []diagnosis.CatalogMatch `json:"matches"`
	Assessment diagnosis.Assessment     `json:"assessment"`
	Empty      bool                     `json:"empty"`
}

// NewDiagnosisService wires the model with its catalog; backend may be nil
func NewDiagnosisService(model *classifier.Model, cat *catalog.Catalog, backend ports.DiagnosisBackend, topK int) *DiagnosisService {
	if topK <= 0 {
		topK = 5
	}
	return &DiagnosisService{
		model:   model,
		catalog: cat,
		backend: backend,
		topK:    topK,
		logger:  internal.DefaultLogger.With("DiagnosisService"),
	}
}

// Vocabulary lists the symptoms a session can select
func (s *DiagnosisService) Vocabulary() []string {
	return s.model.Vocabulary()
}

// Diagnose ranks the session's symptoms. An empty session still returns the
// all-zero ranking, flagged Empty, without consulting the backend.
func (s *DiagnosisService) Diagnose(ctx context.Context, sess *session.Session) (*DiagnosisResult, error) {
	items := sess.Items()
	result := &DiagnosisResult{SessionID: sess.ID, Items: items}

	names, err := sess.Query()
	if err != nil {
		if !errors.HasCode(err, errors.CodeEmptyQuery) {
			return nil, err
		}
		result.Empty = true
		result.Ranking = s.model.Diagnose(nil).Top(s.topK)
		result.Assessment = triage.Assess(nil)
		return result, nil
	}

	result.Recognized = s.model.Recognized(names)
	result.Ranking = s.model.Diagnose(names).Top(s.topK)
	result.Matches = s.catalog.Match(names, catalog.DefaultMatchOptions())
	result.Assessment = s.assess(ctx, items)
	return result, nil
}

func (s *DiagnosisService) assess(ctx context.Context, items []diagnosis.Item) diagnosis.Assessment {
	if s.backend != nil {
		remote, err := s.backend.Predict(ctx, items)
		if err == nil && remote != nil {
			return *remote
		}
		s.logger.Warn("backend unavailable, using heuristic triage: %v", err)
	}
	return triage.Assess(items)
}
