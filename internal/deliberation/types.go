package deliberation

import (
	"context"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/deliberd/internal/participant"
)

// Phase represents a stage of a deliberation run. Phases only advance.
type Phase string

const (
	// PhaseInit is the initial phase before any turn has executed.
	PhaseInit Phase = "init"

	// PhaseActive is the turn-taking phase.
	PhaseActive Phase = "active"

	// PhaseJudging is entered once the round budget is exhausted.
	PhaseJudging Phase = "judging"

	// PhaseComplete is terminal; the verdict is present.
	PhaseComplete Phase = "complete"
)

// phaseRank orders phases for transition checks.
var phaseRank = map[Phase]int{
	PhaseInit:     0,
	PhaseActive:   1,
	PhaseJudging:  2,
	PhaseComplete: 3,
}

// CanAdvanceTo reports whether p may transition to next. Self-transitions
// are allowed only for the active phase (one per committed turn).
func (p Phase) CanAdvanceTo(next Phase) bool {
	cur, ok := phaseRank[p]
	if !ok {
		return false
	}
	nxt, ok := phaseRank[next]
	if !ok {
		return false
	}
	if p == PhaseActive && next == PhaseActive {
		return true
	}
	return nxt == cur+1
}

// TurnRecord is one accepted (or degraded) utterance. Immutable once appended.
type TurnRecord struct {
	Round     int       `json:"round"`
	SpeakerID string    `json:"speaker_id"`
	Speaker   string    `json:"speaker"`
	Utterance string    `json:"utterance"`
	Timestamp time.Time `json:"timestamp"`
}

// Verdict is the final structured judgment.
type Verdict struct {
	Summary   string `json:"summary"`
	Winner    string `json:"winner"`
	Reasoning string `json:"reasoning"`
}

// WinnerTie is the verdict token used when no single winner can be declared.
const WinnerTie = "Tie"

// State is the single aggregate for a deliberation run. Transitions return a
// new State value; the previous value remains valid.
type State struct {
	Topic           string              `json:"topic"`
	Phase           Phase               `json:"phase"`
	Order           []string            `json:"order"`
	ActiveIndex     int                 `json:"active_index"`
	RoundsCompleted int                 `json:"rounds_completed"`
	MaxRounds       int                 `json:"max_rounds"`
	Memories        map[string][]string `json:"memories"`
	Transcript      []TurnRecord        `json:"transcript"`
	UsedUtterances  []string            `json:"used_utterances"`
	Verdict         *Verdict            `json:"verdict,omitempty"`
	StartedAt       time.Time           `json:"started_at"`
	CompletedAt     time.Time           `json:"completed_at,omitempty"`
}

// NewState creates the initial state for a run with empty transcript and
// one empty memory stream per participant.
func NewState(topic string, order []string, maxRounds int) State {
	memories := make(map[string][]string, len(order))
	for _, id := range order {
		memories[id] = []string{}
	}
	return State{
		Topic:          topic,
		Phase:          PhaseInit,
		Order:          append([]string(nil), order...),
		MaxRounds:      maxRounds,
		Memories:       memories,
		Transcript:     []TurnRecord{},
		UsedUtterances: []string{},
		StartedAt:      time.Now(),
	}
}

// Clone returns a deep copy. Mutating the copy leaves the original intact.
func (s State) Clone() State {
	out := s
	out.Order = append([]string(nil), s.Order...)
	out.Transcript = append([]TurnRecord(nil), s.Transcript...)
	out.UsedUtterances = append([]string(nil), s.UsedUtterances...)
	out.Memories = make(map[string][]string, len(s.Memories))
	for id, mem := range s.Memories {
		out.Memories[id] = append([]string(nil), mem...)
	}
	if s.Verdict != nil {
		v := *s.Verdict
		out.Verdict = &v
	}
	return out
}

// ActiveParticipant returns the ID of the participant whose turn is next.
func (s State) ActiveParticipant() string {
	return s.Order[s.ActiveIndex]
}

// WithPhase returns a copy of s in the given phase, or an error if the
// transition would regress.
func (s State) WithPhase(next Phase) (State, error) {
	if !s.Phase.CanAdvanceTo(next) {
		return s, fmt.Errorf("invalid phase transition from %s to %s", s.Phase, next)
	}
	out := s.Clone()
	out.Phase = next
	return out, nil
}

// TurnContext is the textual context handed to the content capability for
// one turn: the active participant's profile, its own recent utterances, and
// the most recent utterances across all participants.
type TurnContext struct {
	Profile      participant.Profile
	SelfMemory   []string
	GlobalRecent []string
}

// ContentCapability generates and refines candidate utterances. Both calls
// block until completion or failure; errors are converted into degraded
// turns by the pipeline, never propagated.
type ContentCapability interface {
	// Generate produces a candidate utterance for the topic and context.
	Generate(ctx context.Context, topic string, tc TurnContext) (string, error)

	// Refine produces a revised utterance from a prompt that includes the
	// rejection feedback for the previous candidate.
	Refine(ctx context.Context, prompt string) (string, error)
}

// VerdictCapability evaluates a finished deliberation. The returned text is
// expected, but not guaranteed, to contain one JSON object with keys
// summary, winner, and reasoning. The winner must be one of the given
// participant display names or "Tie".
type VerdictCapability interface {
	Evaluate(ctx context.Context, topic, transcriptBlock, participantBlock string, winners []string) (string, error)
}
