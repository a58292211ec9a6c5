package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/deliberd/internal/config"
	"github.com/fyrsmithlabs/deliberd/internal/deliberation"
	"github.com/fyrsmithlabs/deliberd/internal/logging"
	"github.com/fyrsmithlabs/deliberd/internal/participant"
	"github.com/fyrsmithlabs/deliberd/internal/report"
	"github.com/fyrsmithlabs/deliberd/pkg/llm"
)

var (
	runTopic        string
	runParticipants []string
	runRounds       int
)

// runCmd runs a full deliberation and prints the verdict
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a deliberation on a topic",
	Long: `Run a complete deliberation: participants argue the topic in rotation
for the configured number of rounds, then the judge model delivers a verdict.

Requires OPENAI_API_KEY (or an OpenAI-compatible endpoint via llm.base_url).

Examples:
  # Debate with the built-in participants
  deliberd run --topic "Should AI development be regulated?"

  # Fewer rounds
  deliberd run --topic "Universal basic income" --rounds 4

  # Explicit participants and a configuration file
  deliberd run --config deliberd.yaml --topic "Carbon taxes" --participants scientist,philosopher`,
	RunE: runDeliberation,
}

func init() {
	runCmd.Flags().StringVar(&runTopic, "topic", "", "deliberation topic (required)")
	runCmd.Flags().StringSliceVar(&runParticipants, "participants", nil, "participant IDs in speaking order")
	runCmd.Flags().IntVar(&runRounds, "rounds", 0, "number of turns to run")
	_ = runCmd.MarkFlagRequired("topic")
}

func runDeliberation(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if cmd.Flags().Changed("participants") {
		cfg.Deliberation.Participants = runParticipants
	}
	if cmd.Flags().Changed("rounds") {
		cfg.Deliberation.MaxRounds = runRounds
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	registry := participant.DefaultRegistry()
	profiles, err := registry.Resolve(cfg.Deliberation.Participants)
	if err != nil {
		return fmt.Errorf("resolving participants: %w", err)
	}

	service, err := llm.NewService(llm.Config{
		BaseURL:          cfg.LLM.BaseURL,
		Model:            cfg.LLM.Model,
		JudgeModel:       cfg.LLM.JudgeModel,
		APIKey:           os.Getenv("OPENAI_API_KEY"),
		Temperature:      cfg.LLM.Temperature,
		JudgeTemperature: cfg.LLM.JudgeTemperature,
	}, log)
	if err != nil {
		return fmt.Errorf("creating LLM service: %w", err)
	}

	gate := deliberation.NewGate(deliberation.GateConfig{
		MinWords:      cfg.Validation.MinWords,
		MaxSimilarity: cfg.Validation.SimilarityThreshold,
		NoveltyWindow: cfg.Validation.NoveltyWindow,
	})
	pipeline := deliberation.NewPipeline(gate, service, deliberation.PipelineConfig{
		MaxAttempts:        cfg.Validation.MaxAttempts,
		SelfMemoryWindow:   cfg.Validation.SelfMemoryWindow,
		GlobalRecentWindow: cfg.Validation.GlobalRecentWindow,
	}, log)
	synthesizer := deliberation.NewSynthesizer(service, log)
	engine := deliberation.NewEngine(pipeline, synthesizer, registry, deliberation.EngineConfig{
		MaxMemorySize: cfg.Deliberation.MaxMemorySize,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Topic: %s\n", runTopic)
	fmt.Printf("Participants: %s\n", participantNames(profiles))
	fmt.Printf("Rounds: %d\n\n", cfg.Deliberation.MaxRounds)

	state, err := engine.Run(ctx, runTopic, cfg.Deliberation.Participants, cfg.Deliberation.MaxRounds)
	if err != nil {
		return fmt.Errorf("running deliberation: %w", err)
	}

	printTranscript(state)
	printVerdict(state)

	if cfg.Report.Enabled {
		writer := report.NewWriter(cfg.Report.Dir, log)
		path, err := writer.Write(state, profiles, cfg)
		if err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("\nReport written to %s\n", path)
	}

	return nil
}

func participantNames(profiles []participant.Profile) string {
	names := ""
	for i, p := range profiles {
		if i > 0 {
			names += ", "
		}
		names += fmt.Sprintf("%s (%s)", p.Name, p.Persona)
	}
	return names
}

func printTranscript(st deliberation.State) {
	for _, turn := range st.Transcript {
		fmt.Printf("[Round %d] %s:\n%s\n\n", turn.Round, turn.Speaker, turn.Utterance)
	}
}

func printVerdict(st deliberation.State) {
	if st.Verdict == nil {
		return
	}
	fmt.Println("=== VERDICT ===")
	fmt.Printf("Summary: %s\n", st.Verdict.Summary)
	fmt.Printf("Winner: %s\n", st.Verdict.Winner)
	fmt.Printf("Reasoning: %s\n", st.Verdict.Reasoning)
}
