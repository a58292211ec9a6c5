package deliberation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/deliberd/internal/participant"
)

// Synthesizer turns a finished transcript into a structured verdict. The
// verdict capability's raw response is parsed structured-first with a
// heuristic text fallback; capability failures yield a degraded tie verdict
// so judging is never fatal to the run.
type Synthesizer struct {
	capability VerdictCapability
	log        *zap.Logger
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(capability VerdictCapability, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{capability: capability, log: log}
}

// Synthesize evaluates the deliberation and returns the verdict. It never
// fails: malformed responses fall back to heuristic parsing, and capability
// errors produce a degraded verdict with winner "Tie".
func (s *Synthesizer) Synthesize(ctx context.Context, st State, profiles []participant.Profile) Verdict {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}

	raw, err := s.capability.Evaluate(ctx, st.Topic, TranscriptBlock(st), ParticipantBlock(profiles), names)
	if err != nil {
		s.log.Error("verdict capability failed, recording tie", zap.Error(err))
		return Verdict{
			Summary:   "Error occurred during judgment",
			Winner:    WinnerTie,
			Reasoning: fmt.Sprintf("Unable to complete judgment due to error: %v", err),
		}
	}

	verdict := parseVerdict(raw, names)
	s.log.Info("judgment parsed", zap.String("winner", verdict.Winner))
	return verdict
}

// TranscriptBlock renders the transcript for evaluation, one line per turn.
func TranscriptBlock(st State) string {
	lines := make([]string, len(st.Transcript))
	for i, t := range st.Transcript {
		lines[i] = fmt.Sprintf("Round %d - %s: %s", t.Round, t.Speaker, t.Utterance)
	}
	return strings.Join(lines, "\n")
}

// ParticipantBlock renders the participant descriptions for evaluation.
func ParticipantBlock(profiles []participant.Profile) string {
	lines := make([]string, len(profiles))
	for i, p := range profiles {
		lines[i] = fmt.Sprintf("%s (%s): %s", p.Name, p.Persona, p.Description)
	}
	return strings.Join(lines, "\n")
}

// rawVerdict mirrors the JSON object the capability is asked to produce.
type rawVerdict struct {
	Summary   string `json:"summary"`
	Winner    string `json:"winner"`
	Reasoning string `json:"reasoning"`
}

// parseVerdict extracts a verdict from the raw response: the first balanced
// JSON object when present and decodable, otherwise line-oriented heuristics.
func parseVerdict(raw string, names []string) Verdict {
	if obj, ok := extractJSONObject(raw); ok {
		var rv rawVerdict
		if err := json.Unmarshal([]byte(obj), &rv); err == nil {
			if rv.Summary == "" {
				rv.Summary = "No summary provided"
			}
			if rv.Reasoning == "" {
				rv.Reasoning = "No reasoning provided"
			}
			return Verdict{
				Summary:   rv.Summary,
				Winner:    resolveWinner(rv.Winner, names),
				Reasoning: rv.Reasoning,
			}
		}
	}
	return parseUnstructured(raw, names)
}

// extractJSONObject returns the first balanced brace-delimited object in raw.
// Braces inside JSON strings are ignored.
func extractJSONObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// resolveWinner maps the declared winner onto a known display name. Exact
// matches (including "Tie") pass through; otherwise a case-insensitive
// substring match in either direction picks the closest name, and no match
// resolves to a tie.
func resolveWinner(winner string, names []string) string {
	winner = strings.TrimSpace(winner)
	if winner == WinnerTie {
		return WinnerTie
	}
	for _, name := range names {
		if winner == name {
			return name
		}
	}

	lower := strings.ToLower(winner)
	for _, name := range names {
		nameLower := strings.ToLower(name)
		if strings.Contains(lower, nameLower) || (lower != "" && strings.Contains(nameLower, lower)) {
			return name
		}
	}
	return WinnerTie
}

// Marker line length limits for the fallback parser. Longer lines are
// treated as content, not section headers.
const (
	sectionMarkerMax = 50
	winnerMarkerMax  = 100
)

var victoryKeywords = []string{"winner", "wins", "victory", "prevails"}

var reasoningMarkers = []string{"reasoning", "justification", "decision"}

// parseUnstructured scans the response line by line, switching accumulation
// between summary and reasoning on short marker lines and capturing the
// winner from marker lines or any early line pairing a participant name with
// a victory keyword.
func parseUnstructured(raw string, names []string) Verdict {
	var summaryLines, reasoningLines []string
	winner := WinnerTie
	section := ""

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		if strings.Contains(lower, "summary") && len(line) < sectionMarkerMax {
			section = "summary"
			continue
		}
		if containsAny(lower, reasoningMarkers) && len(line) < sectionMarkerMax {
			section = "reasoning"
			continue
		}
		if strings.Contains(lower, "winner") && len(line) < winnerMarkerMax {
			for _, name := range names {
				if strings.Contains(lower, strings.ToLower(name)) {
					winner = name
					break
				}
			}
			continue
		}

		switch section {
		case "summary":
			summaryLines = append(summaryLines, line)
		case "reasoning":
			reasoningLines = append(reasoningLines, line)
		default:
			// Before any section marker, look for an opportunistic winner
			// declaration ("Dr. X wins the debate").
			if containsAny(lower, victoryKeywords) {
				for _, name := range names {
					if strings.Contains(lower, strings.ToLower(name)) {
						winner = name
					}
				}
			}
		}
	}

	summary := strings.Join(summaryLines, " ")
	if summary == "" {
		summary = truncate(raw, 500)
	}
	reasoning := strings.Join(reasoningLines, " ")
	if reasoning == "" {
		reasoning = "See full judgment above"
	}

	return Verdict{Summary: summary, Winner: winner, Reasoning: reasoning}
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
