package deliberation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// GateConfig tunes the quality gate thresholds.
type GateConfig struct {
	// MinWords is the minimum word count for a candidate.
	MinWords int

	// MaxSimilarity rejects candidates whose similarity to any recent
	// utterance exceeds this ratio.
	MaxSimilarity float64

	// NoveltyWindow is how many recent utterances the novelty check
	// compares against.
	NoveltyWindow int
}

// DefaultGateConfig returns the standard gate thresholds.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinWords:      10,
		MaxSimilarity: 0.7,
		NoveltyWindow: 5,
	}
}

// GateResult is the outcome of evaluating one candidate. Reasons lists every
// failed check, not just the first.
type GateResult struct {
	Accepted bool
	Reasons  []string
}

// Gate applies length, substance, novelty, relevance, and placeholder checks
// to candidate utterances. It is pure: no state is carried between calls.
type Gate struct {
	cfg GateConfig
}

// NewGate creates a gate with the given thresholds. Zero values fall back to
// the defaults.
func NewGate(cfg GateConfig) *Gate {
	def := DefaultGateConfig()
	if cfg.MinWords <= 0 {
		cfg.MinWords = def.MinWords
	}
	if cfg.MaxSimilarity <= 0 {
		cfg.MaxSimilarity = def.MaxSimilarity
	}
	if cfg.NoveltyWindow <= 0 {
		cfg.NoveltyWindow = def.NoveltyWindow
	}
	return &Gate{cfg: cfg}
}

// minCharLength is the minimum raw character length for a candidate.
const minCharLength = 20

// fillerPhrases are removed (case-insensitively) before the substance check.
var fillerPhrases = []string{
	"i think", "i believe", "in my opinion", "it seems to me",
	"let me say", "as we know", "generally speaking",
}

// reasoningIndicators are quality markers at least one of which must appear:
// causal connectives, evidentiary nouns, and modal verbs.
var reasoningIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbecause\b`),
	regexp.MustCompile(`(?i)\btherefore\b`),
	regexp.MustCompile(`(?i)\bhowever\b`),
	regexp.MustCompile(`(?i)\bevidence\b`),
	regexp.MustCompile(`(?i)\bresearch\b`),
	regexp.MustCompile(`(?i)\bstudies\b`),
	regexp.MustCompile(`(?i)\bdata\b`),
	regexp.MustCompile(`(?i)\banalysis\b`),
	regexp.MustCompile(`(?i)\baccording\b`),
	regexp.MustCompile(`(?i)\bshould\b`),
	regexp.MustCompile(`(?i)\bmust\b`),
	regexp.MustCompile(`(?i)\bwould\b`),
}

// placeholderPatterns match template artifacts and error sentinels that must
// never be committed as real utterances.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[.*?\]`),
	regexp.MustCompile(`<.*?>`),
	regexp.MustCompile(`TODO`),
	regexp.MustCompile(`FIXME`),
	regexp.MustCompile(`XXX`),
	regexp.MustCompile(`\[ERROR`),
}

var nonWordChars = regexp.MustCompile(`[^\w\s]`)

// Evaluate runs every check against the candidate and returns the combined
// result. recentUsed is the flat log of previously accepted utterances in
// turn order; only the most recent NoveltyWindow entries are compared.
func (g *Gate) Evaluate(candidate string, recentUsed []string) GateResult {
	if strings.TrimSpace(candidate) == "" {
		return GateResult{Reasons: []string{"utterance is empty"}}
	}

	var reasons []string

	if !g.hasMinimumLength(candidate) {
		reasons = append(reasons, fmt.Sprintf("utterance too short (minimum %d words, %d characters)", g.cfg.MinWords, minCharLength))
	}
	if isPlaceholder(candidate) {
		reasons = append(reasons, "utterance contains placeholder or error text")
	}
	if !hasSubstance(candidate) {
		reasons = append(reasons, "utterance lacks substantive content")
	}
	if !g.isNovel(candidate, recentUsed) {
		reasons = append(reasons, fmt.Sprintf("utterance too similar to previous contributions (threshold %.2f)", g.cfg.MaxSimilarity))
	}
	if !isRelevant(candidate) {
		reasons = append(reasons, "utterance lacks clear reasoning indicators")
	}

	return GateResult{Accepted: len(reasons) == 0, Reasons: reasons}
}

// hasMinimumLength checks word and character minimums.
func (g *Gate) hasMinimumLength(candidate string) bool {
	words := strings.Fields(candidate)
	return len(words) >= g.cfg.MinWords && utf8.RuneCountInString(strings.TrimSpace(candidate)) >= minCharLength
}

// hasSubstance checks that enough distinct content survives filler removal.
func hasSubstance(candidate string) bool {
	clean := strings.ToLower(candidate)
	for _, phrase := range fillerPhrases {
		clean = strings.ReplaceAll(clean, phrase, "")
	}

	words := strings.Fields(clean)
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return len(unique) >= 5 && len(words) >= 8
}

// isNovel compares the normalized candidate against the most recent accepted
// utterances and rejects near-duplicates.
func (g *Gate) isNovel(candidate string, recentUsed []string) bool {
	if len(recentUsed) == 0 {
		return true
	}

	window := recentUsed
	if len(window) > g.cfg.NoveltyWindow {
		window = window[len(window)-g.cfg.NoveltyWindow:]
	}

	normalized := normalizeText(candidate)
	for _, used := range window {
		if similarity(normalized, normalizeText(used)) > g.cfg.MaxSimilarity {
			return false
		}
	}
	return true
}

// isRelevant requires at least one reasoning indicator.
func isRelevant(candidate string) bool {
	for _, indicator := range reasoningIndicators {
		if indicator.MatchString(candidate) {
			return true
		}
	}
	return false
}

// isPlaceholder detects bracketed placeholders, TODO markers, and error
// sentinels. Matching is done against the uppercased candidate so markers
// are caught regardless of case.
func isPlaceholder(candidate string) bool {
	upper := strings.ToUpper(candidate)
	for _, pattern := range placeholderPatterns {
		if pattern.MatchString(upper) {
			return true
		}
	}
	return false
}

// normalizeText lowercases, strips punctuation, and collapses whitespace for
// similarity comparison.
func normalizeText(text string) string {
	text = strings.ToLower(text)
	text = nonWordChars.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// similarity returns a ratio in [0,1] between two normalized strings, based
// on the edit distance of their character-level diff.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)

	longer := la
	if lb > longer {
		longer = lb
	}
	return 1 - float64(distance)/float64(longer)
}
