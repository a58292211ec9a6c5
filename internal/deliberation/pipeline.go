package deliberation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/deliberd/internal/participant"
)

// PipelineConfig tunes the per-turn acceptance pipeline.
type PipelineConfig struct {
	// MaxAttempts is the total generation budget per turn: one initial
	// generation plus up to MaxAttempts-1 refinements.
	MaxAttempts int

	// SelfMemoryWindow is how many of the participant's own recent
	// utterances are included in the generation context.
	SelfMemoryWindow int

	// GlobalRecentWindow is how many recent utterances from the shared log
	// are included in the generation context.
	GlobalRecentWindow int
}

// DefaultPipelineConfig returns the standard pipeline settings.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxAttempts:        3,
		SelfMemoryWindow:   2,
		GlobalRecentWindow: 3,
	}
}

// Pipeline executes single turns: it requests content, validates it through
// the gate, refines on rejection within a bounded attempt budget, and commits
// the result. Committing is the only point where memories, the transcript,
// and the shared utterance log change.
type Pipeline struct {
	gate    *Gate
	content ContentCapability
	cfg     PipelineConfig
	log     *zap.Logger
}

// NewPipeline creates a pipeline. Zero config values fall back to defaults.
func NewPipeline(gate *Gate, content ContentCapability, cfg PipelineConfig, log *zap.Logger) *Pipeline {
	def := DefaultPipelineConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.SelfMemoryWindow <= 0 {
		cfg.SelfMemoryWindow = def.SelfMemoryWindow
	}
	if cfg.GlobalRecentWindow <= 0 {
		cfg.GlobalRecentWindow = def.GlobalRecentWindow
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{gate: gate, content: content, cfg: cfg, log: log}
}

// RunTurn executes one turn for the given participant and returns the new
// state together with the committed utterance. Capability errors degrade the
// turn instead of failing it: the run always progresses.
func (p *Pipeline) RunTurn(ctx context.Context, st State, profile participant.Profile) (State, string) {
	tc := TurnContext{
		Profile:      profile,
		SelfMemory:   tail(st.Memories[profile.ID], p.cfg.SelfMemoryWindow),
		GlobalRecent: tail(st.UsedUtterances, p.cfg.GlobalRecentWindow),
	}

	candidate, err := p.content.Generate(ctx, st.Topic, tc)
	if err != nil {
		// The failure is committed as a visibly tagged utterance, with no
		// further generation attempts for this turn.
		p.log.Warn("content generation failed, committing degraded turn",
			zap.String("participant", profile.ID),
			zap.Error(err))
		degraded := fmt.Sprintf("[%s encountered an error generating an utterance: %v]", profile.Name, err)
		return p.commit(st, profile, degraded), degraded
	}

	candidate = strings.TrimSpace(candidate)
	result := p.gate.Evaluate(candidate, st.UsedUtterances)

	for attempt := 1; !result.Accepted && attempt < p.cfg.MaxAttempts; attempt++ {
		p.log.Debug("candidate rejected, requesting refinement",
			zap.String("participant", profile.ID),
			zap.Int("attempt", attempt),
			zap.Strings("reasons", result.Reasons))

		prompt := buildRefinementPrompt(candidate, result.Reasons, st.UsedUtterances)
		refined, err := p.content.Refine(ctx, prompt)
		if err != nil {
			p.log.Warn("refinement failed, keeping previous candidate",
				zap.String("participant", profile.ID),
				zap.Error(err))
			break
		}

		candidate = strings.TrimSpace(refined)
		result = p.gate.Evaluate(candidate, st.UsedUtterances)
	}

	if !result.Accepted {
		// Accepting the last attempt regardless is deliberate: a live run is
		// never blocked on the quality gate.
		p.log.Warn("attempts exhausted, committing best available candidate",
			zap.String("participant", profile.ID),
			zap.Strings("reasons", result.Reasons))
	}

	return p.commit(st, profile, candidate), candidate
}

// commit appends the utterance to the speaker's memory, to every other
// participant's memory prefixed with the speaker's display name, to the
// transcript, and to the shared utterance log, then advances the rotation.
// The returned state is always fully formed.
func (p *Pipeline) commit(st State, profile participant.Profile, utterance string) State {
	out := st.Clone()

	for id := range out.Memories {
		if id == profile.ID {
			out.Memories[id] = append(out.Memories[id], utterance)
			continue
		}
		out.Memories[id] = append(out.Memories[id], fmt.Sprintf("%s: %s", profile.Name, utterance))
	}

	out.Transcript = append(out.Transcript, TurnRecord{
		Round:     len(out.Transcript) + 1,
		SpeakerID: profile.ID,
		Speaker:   profile.Name,
		Utterance: utterance,
		Timestamp: time.Now(),
	})
	out.UsedUtterances = append(out.UsedUtterances, utterance)
	out.RoundsCompleted = len(out.Transcript)
	out.ActiveIndex = (out.ActiveIndex + 1) % len(out.Order)

	return out
}

// buildRefinementPrompt assembles the feedback prompt for a rejected
// candidate: the rejection reasons, a sample of recent utterances to avoid,
// and explicit diversification instructions.
func buildRefinementPrompt(candidate string, reasons []string, used []string) string {
	var b strings.Builder

	b.WriteString("Your previous argument was rejected for the following reasons:\n")
	for _, reason := range reasons {
		fmt.Fprintf(&b, "- %s\n", reason)
	}

	b.WriteString("\nRecent arguments to avoid repeating:\n")
	recent := tail(used, 5)
	if len(recent) == 0 {
		b.WriteString("None\n")
	}
	for _, arg := range recent {
		fmt.Fprintf(&b, "- %s\n", truncate(arg, 100))
	}

	b.WriteString(`
Please provide a DIFFERENT, more substantial argument that:
1. Is at least 10 words and substantive
2. Offers a genuinely novel perspective or point
3. Is well-reasoned and stays in character
4. Does not repeat or closely mirror previous arguments
5. Uses logical connectors (because, therefore, however)

`)
	fmt.Fprintf(&b, "Original argument: %s\n\n", candidate)
	b.WriteString("Provide ONLY your refined argument, with no meta-commentary.")

	return b.String()
}

// tail returns the last n elements of s without copying.
func tail(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
