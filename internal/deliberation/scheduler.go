package deliberation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/deliberd/internal/participant"
)

// Setup validation errors. These are the only fatal errors a run can
// produce; everything after setup degrades instead of failing.
var (
	ErrEmptyTopic         = errors.New("deliberation topic must not be empty")
	ErrTooFewParticipants = errors.New("deliberation requires at least 2 participants")
	ErrInvalidRoundBudget = errors.New("round budget must be at least 1")
)

// EngineConfig tunes the scheduler.
type EngineConfig struct {
	// MaxMemorySize trims every participant memory to this many entries
	// after each committed turn. 0 disables trimming.
	MaxMemorySize int
}

// Engine owns the phase state machine and the turn loop. It selects the
// active participant, runs the turn pipeline, and hands the finished
// transcript to the verdict synthesizer once the round budget is exhausted.
type Engine struct {
	pipeline    *Pipeline
	synthesizer *Synthesizer
	registry    *participant.Registry
	cfg         EngineConfig
	log         *zap.Logger
}

// NewEngine creates an engine.
func NewEngine(pipeline *Pipeline, synthesizer *Synthesizer, registry *participant.Registry, cfg EngineConfig, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		pipeline:    pipeline,
		synthesizer: synthesizer,
		registry:    registry,
		cfg:         cfg,
		log:         log,
	}
}

// Run executes a complete deliberation: setup validation, the turn loop, and
// verdict synthesis. Configuration problems fail before any turn executes;
// after that the run always reaches PhaseComplete unless the context is
// cancelled between turns.
func (e *Engine) Run(ctx context.Context, topic string, participantIDs []string, maxRounds int) (State, error) {
	if topic == "" {
		return State{}, ErrEmptyTopic
	}
	if len(participantIDs) < 2 {
		return State{}, fmt.Errorf("%w: got %d", ErrTooFewParticipants, len(participantIDs))
	}
	if maxRounds < 1 {
		return State{}, fmt.Errorf("%w: got %d", ErrInvalidRoundBudget, maxRounds)
	}

	profiles, err := e.registry.Resolve(participantIDs)
	if err != nil {
		return State{}, err
	}
	byID := make(map[string]participant.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	st := NewState(topic, participantIDs, maxRounds)
	st, err = st.WithPhase(PhaseActive)
	if err != nil {
		return st, err
	}

	e.log.Info("deliberation started",
		zap.String("topic", topic),
		zap.Strings("participants", participantIDs),
		zap.Int("max_rounds", maxRounds))

	for st.RoundsCompleted < st.MaxRounds {
		// Cancellation is coarse: only between turns, never mid-call.
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		default:
		}

		profile := byID[st.ActiveParticipant()]
		e.logTransition(st, profile)

		var utterance string
		st, utterance = e.pipeline.RunTurn(ctx, st, profile)
		st = st.TrimMemories(e.cfg.MaxMemorySize)

		e.log.Info("turn committed",
			zap.Int("round", st.RoundsCompleted),
			zap.String("speaker", profile.Name),
			zap.String("utterance", truncate(utterance, 100)))
	}

	st, err = st.WithPhase(PhaseJudging)
	if err != nil {
		return st, err
	}
	e.log.Info("round budget exhausted, judging",
		zap.Int("rounds_completed", st.RoundsCompleted))

	verdict := e.synthesizer.Synthesize(ctx, st, profiles)

	st, err = st.WithPhase(PhaseComplete)
	if err != nil {
		return st, err
	}
	st.Verdict = &verdict
	st.CompletedAt = time.Now()

	e.log.Info("deliberation complete",
		zap.String("winner", verdict.Winner),
		zap.Int("rounds", st.RoundsCompleted))

	return st, nil
}

// logTransition records the scheduler step at debug level.
func (e *Engine) logTransition(st State, profile participant.Profile) {
	e.log.Debug("selecting active participant",
		zap.String("phase", string(st.Phase)),
		zap.Int("round", st.RoundsCompleted+1),
		zap.Int("max_rounds", st.MaxRounds),
		zap.String("participant", profile.ID))
}
