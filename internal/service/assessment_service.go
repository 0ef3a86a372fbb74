package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cnmaturity/internal/metrics"
	"cnmaturity/internal/model"
	"cnmaturity/internal/repository"
	"cnmaturity/internal/session"
)

var (
	ErrArchiveDisabled = errors.New("result archive is disabled")
	ErrResultNotFound  = errors.New("no archived result for session")
)

const archiveTimeout = 5 * time.Second

// AssessmentService runs respondent sessions on top of the session manager:
// it issues tokens, records metrics, pushes live updates and archives
// completed results.
type AssessmentService struct {
	sessions    *session.Manager
	auth        *AuthService
	results     repository.ResultRepo // nil disables archiving
	recorder    *metrics.Recorder
	logger      *zap.Logger
	broadcaster Broadcaster
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(
	sessions *session.Manager,
	auth *AuthService,
	results repository.ResultRepo,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) *AssessmentService {
	return &AssessmentService{
		sessions: sessions,
		auth:     auth,
		results:  results,
		recorder: recorder,
		logger:   logger,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *AssessmentService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start creates a session and returns its token and first questions
func (s *AssessmentService) Start(ctx context.Context, req *model.CreateSessionRequest) (*model.CreateSessionResponse, error) {
	snap, err := s.sessions.Create(ctx, session.Config{
		AssessmentType: req.AssessmentType,
		RespondentRole: req.RespondentRole,
		Language:       req.Language,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.auth.GenerateSessionToken(snap.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	eligible, err := s.sessions.Eligible(ctx, snap.ID)
	if err != nil {
		return nil, err
	}

	s.recorder.SessionCreated(string(snap.AssessmentType), string(snap.RespondentRole))
	s.logger.Info("session started",
		zap.String("session_id", snap.ID),
		zap.String("assessment_type", string(snap.AssessmentType)),
		zap.String("role", string(snap.RespondentRole)),
		zap.Int("eligible", len(eligible)),
	)

	return &model.CreateSessionResponse{
		Session:  snap,
		Token:    token,
		Eligible: model.Views(eligible, snap.Language),
	}, nil
}

// Session returns the current snapshot
func (s *AssessmentService) Session(ctx context.Context, sessionID string) (*model.SessionSnapshot, error) {
	return s.sessions.Get(ctx, sessionID)
}

// Questions returns the eligible questions rendered in lang, or in the
// session's language when lang is empty
func (s *AssessmentService) Questions(ctx context.Context, sessionID, lang string) ([]model.QuestionView, error) {
	snap, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	eligible, err := s.sessions.Eligible(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if lang == "" {
		lang = snap.Language
	}
	return model.Views(eligible, lang), nil
}

// Submit records a first answer
func (s *AssessmentService) Submit(ctx context.Context, sessionID, questionID string, value int) (*model.SessionSnapshot, error) {
	out, err := s.sessions.Submit(ctx, sessionID, questionID, value)
	if err != nil {
		s.rejected(sessionID, questionID, err)
		return nil, err
	}
	s.recorder.AnswerRecorded("submit")
	s.afterMutation(ctx, out)
	return out.Snapshot, nil
}

// Revise changes an answer and reports the answers it discarded
func (s *AssessmentService) Revise(ctx context.Context, sessionID, questionID string, value int) (*model.SessionSnapshot, error) {
	out, err := s.sessions.Revise(ctx, sessionID, questionID, value)
	if err != nil {
		s.rejected(sessionID, questionID, err)
		return nil, err
	}
	s.recorder.AnswerRecorded("revise")
	if n := len(out.Snapshot.Discarded); n > 0 {
		s.logger.Info("answers discarded by revision",
			zap.String("session_id", sessionID),
			zap.String("question_id", questionID),
			zap.Strings("discarded", out.Snapshot.Discarded),
		)
	}
	s.afterMutation(ctx, out)
	return out.Snapshot, nil
}

// Score recomputes the live score
func (s *AssessmentService) Score(ctx context.Context, sessionID string) (model.ScoreResult, error) {
	return s.sessions.Score(ctx, sessionID)
}

// Result returns the archived result of a completed session
func (s *AssessmentService) Result(ctx context.Context, sessionID string) (*model.AssessmentResult, error) {
	if s.results == nil {
		return nil, ErrArchiveDisabled
	}
	res, err := s.results.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, sessionID)
	}
	return res, nil
}

// Abandon deletes a session and closes its live connections
func (s *AssessmentService) Abandon(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	if s.broadcaster != nil {
		s.broadcaster.DisconnectSession(sessionID)
	}
	s.logger.Info("session abandoned", zap.String("session_id", sessionID))
	return nil
}

func (s *AssessmentService) afterMutation(ctx context.Context, out *session.Outcome) {
	snap := out.Snapshot
	s.publish(snap.ID, MsgSessionUpdated, snap)
	if len(snap.Discarded) > 0 {
		s.publish(snap.ID, MsgAnswersDiscarded, map[string]interface{}{
			"questionIds": snap.Discarded,
		})
	}
	if !out.Completed {
		return
	}

	s.recorder.SessionCompleted()
	s.logger.Info("session completed",
		zap.String("session_id", snap.ID),
		zap.Int("answered", snap.Answered),
		zap.Bool("scored", out.Result.Score.Available()),
	)
	s.publish(snap.ID, MsgSessionCompleted, out.Result.Score)
	s.archive(ctx, out.Result)
}

// archive stores the result; failures are logged and never reach the respondent
func (s *AssessmentService) archive(ctx context.Context, res *model.AssessmentResult) {
	if s.results == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()
	if err := s.results.Save(ctx, res); err != nil {
		s.logger.Error("failed to archive result", zap.String("session_id", res.SessionID), zap.Error(err))
	}
}

func (s *AssessmentService) publish(sessionID, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(sessionID, msgType, payload)
	}
}

func (s *AssessmentService) rejected(sessionID, questionID string, err error) {
	reason := RejectionReason(err)
	if reason == "" {
		s.logger.Error("answer failed", zap.String("session_id", sessionID), zap.String("question_id", questionID), zap.Error(err))
		return
	}
	s.recorder.AnswerRejected(reason)
	s.logger.Debug("answer rejected",
		zap.String("session_id", sessionID),
		zap.String("question_id", questionID),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

// RejectionReason classifies caller-facing session errors; it returns ""
// for internal failures
func RejectionReason(err error) string {
	var notEligible *session.QuestionNotEligibleError
	var badOption *session.InvalidOptionValueError
	switch {
	case errors.As(err, &notEligible):
		return "not_eligible"
	case errors.As(err, &badOption):
		return "invalid_option"
	case errors.Is(err, session.ErrQuestionNotAnswered):
		return "not_answered"
	case errors.Is(err, session.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, session.ErrVersionConflict):
		return "conflict"
	}
	return ""
}
