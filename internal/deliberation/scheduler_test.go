package deliberation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/deliberd/internal/participant"
)

// fakeVerdict is a scriptable VerdictCapability.
type fakeVerdict struct {
	response string
	err      error

	calls           int
	topic           string
	transcriptBlock string
	winners         []string
}

func (f *fakeVerdict) Evaluate(_ context.Context, topic, transcriptBlock, _ string, winners []string) (string, error) {
	f.calls++
	f.topic = topic
	f.transcriptBlock = transcriptBlock
	f.winners = winners
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

var diverseUtterances = []string{
	"Renewable adoption should accelerate because cost curves and deployment evidence show clear economic benefits.",
	"However the grid integration data suggests storage research must mature before full reliance is feasible.",
	"Ethical analysis indicates society must weigh intergenerational duties because climate harms compound over decades.",
	"According to comparative studies, nations with early carbon pricing saw measurable innovation gains in adjacent sectors.",
	"The transition therefore demands workforce retraining because displaced industries concentrate in politically fragile regions.",
	"Evidence from pilot programs shows community ownership models would increase local acceptance of new infrastructure.",
}

func testRegistry(t *testing.T) *participant.Registry {
	t.Helper()
	r := participant.NewRegistry()
	require.NoError(t, r.Register(alice))
	require.NoError(t, r.Register(bob))
	return r
}

func newTestEngine(t *testing.T, content ContentCapability, verdict VerdictCapability, cfg EngineConfig) *Engine {
	t.Helper()
	pipeline := NewPipeline(NewGate(DefaultGateConfig()), content, DefaultPipelineConfig(), zap.NewNop())
	synth := NewSynthesizer(verdict, zap.NewNop())
	return NewEngine(pipeline, synth, testRegistry(t), cfg, zap.NewNop())
}

func scriptedContent() *fakeContent {
	n := 0
	return &fakeContent{
		generate: func(string, TurnContext) (string, error) {
			n++
			return diverseUtterances[(n-1)%len(diverseUtterances)], nil
		},
	}
}

func TestEngine_Run_CompletesWithExactRoundBudget(t *testing.T) {
	verdict := &fakeVerdict{response: `{"summary":"S","winner":"Alice","reasoning":"R"}`}
	engine := newTestEngine(t, scriptedContent(), verdict, EngineConfig{})

	st, err := engine.Run(context.Background(), "energy policy", []string{"alice", "bob"}, 3)
	require.NoError(t, err)

	assert.Equal(t, PhaseComplete, st.Phase)
	assert.Len(t, st.Transcript, 3)
	assert.Equal(t, 3, st.RoundsCompleted)

	// Turn-count rounds: speakers alternate and the budget is independent
	// of how many participants there are.
	assert.Equal(t, "alice", st.Transcript[0].SpeakerID)
	assert.Equal(t, "bob", st.Transcript[1].SpeakerID)
	assert.Equal(t, "alice", st.Transcript[2].SpeakerID)

	require.NotNil(t, st.Verdict)
	assert.Equal(t, "Alice", st.Verdict.Winner)
	assert.Equal(t, "S", st.Verdict.Summary)
	assert.False(t, st.CompletedAt.IsZero())
}

func TestEngine_Run_UsedUtterancesMatchesTranscript(t *testing.T) {
	verdict := &fakeVerdict{response: `{"summary":"S","winner":"Tie","reasoning":"R"}`}
	engine := newTestEngine(t, scriptedContent(), verdict, EngineConfig{})

	st, err := engine.Run(context.Background(), "energy policy", []string{"alice", "bob"}, 5)
	require.NoError(t, err)

	require.Len(t, st.UsedUtterances, len(st.Transcript))
	for i, rec := range st.Transcript {
		assert.Equal(t, rec.Utterance, st.UsedUtterances[i])
		assert.Equal(t, i+1, rec.Round)
	}
}

func TestEngine_Run_VerdictReceivesTranscriptAndWinners(t *testing.T) {
	verdict := &fakeVerdict{response: `{"summary":"S","winner":"Bob","reasoning":"R"}`}
	engine := newTestEngine(t, scriptedContent(), verdict, EngineConfig{})

	st, err := engine.Run(context.Background(), "energy policy", []string{"alice", "bob"}, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, verdict.calls)
	assert.Equal(t, "energy policy", verdict.topic)
	assert.Equal(t, []string{"Alice", "Bob"}, verdict.winners)
	assert.Contains(t, verdict.transcriptBlock, "Round 1 - Alice:")
	assert.Contains(t, verdict.transcriptBlock, "Round 2 - Bob:")
	assert.Equal(t, "Bob", st.Verdict.Winner)
}

func TestEngine_Run_DegradedVerdictStillCompletes(t *testing.T) {
	verdict := &fakeVerdict{err: errors.New("judge unavailable")}
	engine := newTestEngine(t, scriptedContent(), verdict, EngineConfig{})

	st, err := engine.Run(context.Background(), "energy policy", []string{"alice", "bob"}, 2)
	require.NoError(t, err)

	assert.Equal(t, PhaseComplete, st.Phase)
	require.NotNil(t, st.Verdict)
	assert.Equal(t, WinnerTie, st.Verdict.Winner)
	assert.Contains(t, st.Verdict.Reasoning, "judge unavailable")
}

func TestEngine_Run_SetupValidation(t *testing.T) {
	verdict := &fakeVerdict{response: "{}"}

	tests := []struct {
		name         string
		topic        string
		participants []string
		rounds       int
		wantErr      error
	}{
		{"empty topic", "", []string{"alice", "bob"}, 3, ErrEmptyTopic},
		{"one participant", "t", []string{"alice"}, 3, ErrTooFewParticipants},
		{"zero rounds", "t", []string{"alice", "bob"}, 0, ErrInvalidRoundBudget},
		{"negative rounds", "t", []string{"alice", "bob"}, -1, ErrInvalidRoundBudget},
		{"unknown participant", "t", []string{"alice", "economist"}, 3, participant.ErrUnknownParticipant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := scriptedContent()
			engine := newTestEngine(t, content, verdict, EngineConfig{})

			_, err := engine.Run(context.Background(), tt.topic, tt.participants, tt.rounds)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, content.generateCalls, "setup failures must precede any turn")
		})
	}
}

func TestEngine_Run_CancelledBeforeFirstTurn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	content := scriptedContent()
	engine := newTestEngine(t, content, &fakeVerdict{response: "{}"}, EngineConfig{})

	st, err := engine.Run(ctx, "energy policy", []string{"alice", "bob"}, 3)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, st.Transcript)
	assert.Zero(t, content.generateCalls)
}

func TestEngine_Run_TrimsMemories(t *testing.T) {
	verdict := &fakeVerdict{response: `{"summary":"S","winner":"Tie","reasoning":"R"}`}
	engine := newTestEngine(t, scriptedContent(), verdict, EngineConfig{MaxMemorySize: 2})

	st, err := engine.Run(context.Background(), "energy policy", []string{"alice", "bob"}, 5)
	require.NoError(t, err)

	for id, mem := range st.Memories {
		assert.LessOrEqual(t, len(mem), 2, "memory for %s", id)
	}
	// Trimming never touches the transcript or the shared log.
	assert.Len(t, st.Transcript, 5)
	assert.Len(t, st.UsedUtterances, 5)
}

func TestEngine_Run_DegradedTurnsStillProgress(t *testing.T) {
	content := &fakeContent{
		generate: func(string, TurnContext) (string, error) { return "", errors.New("model offline") },
	}
	verdict := &fakeVerdict{response: `{"summary":"S","winner":"Tie","reasoning":"R"}`}
	engine := newTestEngine(t, content, verdict, EngineConfig{})

	st, err := engine.Run(context.Background(), "energy policy", []string{"alice", "bob"}, 4)
	require.NoError(t, err)

	assert.Equal(t, PhaseComplete, st.Phase)
	require.Len(t, st.Transcript, 4)
	for _, rec := range st.Transcript {
		assert.Contains(t, rec.Utterance, "encountered an error")
	}
}
