// Package report persists the final deliberation snapshot as a JSON file:
// run metadata, the judgment, contribution metrics, and the full transcript.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/deliberd/internal/deliberation"
	"github.com/fyrsmithlabs/deliberd/internal/participant"
)

// Metadata summarizes the run.
type Metadata struct {
	RunID           string    `json:"run_id"`
	Topic           string    `json:"topic"`
	TotalRounds     int       `json:"total_rounds"`
	CompletedRounds int       `json:"completed_rounds"`
	Participants    []string  `json:"participants"`
	Winner          string    `json:"winner"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// Metrics captures contribution statistics.
type Metrics struct {
	TotalUtterances  int            `json:"total_utterances"`
	UniqueUtterances int            `json:"unique_utterances"`
	Contributions    map[string]int `json:"participant_contributions"`
}

// Report is the persisted snapshot.
type Report struct {
	Metadata   Metadata                  `json:"metadata"`
	Judgment   deliberation.Verdict      `json:"judgment"`
	Metrics    Metrics                   `json:"performance_metrics"`
	Transcript []deliberation.TurnRecord `json:"full_transcript"`
	Settings   any                       `json:"configuration,omitempty"`
}

// Writer persists reports to a directory.
type Writer struct {
	dir string
	log *zap.Logger
}

// NewWriter creates a writer targeting dir. The directory is created on the
// first write.
func NewWriter(dir string, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{dir: dir, log: log}
}

// Build assembles the report for a finished deliberation.
func Build(st deliberation.State, profiles []participant.Profile, settings any) Report {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}

	judgment := deliberation.Verdict{Winner: deliberation.WinnerTie}
	if st.Verdict != nil {
		judgment = *st.Verdict
	}

	return Report{
		Metadata: Metadata{
			RunID:           uuid.NewString(),
			Topic:           st.Topic,
			TotalRounds:     st.MaxRounds,
			CompletedRounds: st.RoundsCompleted,
			Participants:    names,
			Winner:          judgment.Winner,
			StartedAt:       st.StartedAt,
			CompletedAt:     st.CompletedAt,
			DurationMinutes: durationMinutes(st.StartedAt, st.CompletedAt),
		},
		Judgment:   judgment,
		Metrics:    buildMetrics(st),
		Transcript: st.Transcript,
		Settings:   settings,
	}
}

// Write builds and persists the report, returning the file path.
func (w *Writer) Write(st deliberation.State, profiles []participant.Profile, settings any) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory %s: %w", w.dir, err)
	}

	rep := Build(st, profiles, settings)
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("deliberation_report_%s.json", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	w.log.Info("report written", zap.String("path", path), zap.String("run_id", rep.Metadata.RunID))
	return path, nil
}

// buildMetrics counts total, unique, and per-speaker utterances.
func buildMetrics(st deliberation.State) Metrics {
	unique := make(map[string]struct{}, len(st.UsedUtterances))
	for _, u := range st.UsedUtterances {
		unique[u] = struct{}{}
	}

	contributions := make(map[string]int)
	for _, rec := range st.Transcript {
		contributions[rec.Speaker]++
	}

	return Metrics{
		TotalUtterances:  len(st.UsedUtterances),
		UniqueUtterances: len(unique),
		Contributions:    contributions,
	}
}

// durationMinutes returns the run duration rounded to two decimals, or 0 when
// either timestamp is missing.
func durationMinutes(start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}
	minutes := end.Sub(start).Minutes()
	return float64(int(minutes*100+0.5)) / 100
}
