package llm

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/deliberd/internal/deliberation"
)

const judgeSystemPrompt = `You are an impartial debate judge. Evaluate arguments based on:
- Logical consistency and reasoning quality
- Evidence and support for claims
- Relevance to the topic and avoidance of repetition
- Persuasiveness and rhetorical quality
- Adherence to persona and perspective

Provide a comprehensive summary and declare a clear winner with detailed justification.`

const defaultPersona = "You are a participant in a formal debate."

// buildGenerationPrompt assembles the system prompt for one turn: the
// participant's persona, the topic, recent context, and diversification
// instructions.
func buildGenerationPrompt(topic string, tc deliberation.TurnContext) string {
	persona := tc.Profile.SystemPrompt
	if persona == "" {
		persona = defaultPersona
	}

	var context strings.Builder
	if len(tc.SelfMemory) > 0 {
		context.WriteString("\n\nYour previous arguments:\n")
		context.WriteString(bulletList(tc.SelfMemory))
	}
	if len(tc.GlobalRecent) > 0 {
		context.WriteString("\n\nRecent arguments from all participants (DO NOT REPEAT):\n")
		context.WriteString(bulletList(tc.GlobalRecent))
	}

	return fmt.Sprintf(`%s

Debate Topic: %s
%s

Instructions:
1. Provide a logical, well-reasoned argument from your professional perspective
2. DO NOT repeat or closely mirror previous arguments - offer NEW insights
3. Build upon or counter previous points when relevant
4. Keep arguments concise but substantive (2-4 sentences, 30-100 words)
5. Maintain professional tone and stay in character
6. Be specific and avoid vague generalities

Your response should be ONLY your argument, with no meta-commentary or explanations.`, persona, topic, context.String())
}

// buildJudgePrompt assembles the evaluation request, constraining the winner
// field to the closed token set.
func buildJudgePrompt(topic, transcriptBlock, participantBlock string, winners []string) string {
	tokens := strings.Join(winners, ", ")

	return fmt.Sprintf(`DEBATE TOPIC: %s

PARTICIPANTS:
%s

COMPLETE TRANSCRIPT:
%s

Please evaluate this debate and provide your judgment in the following JSON format:
{
    "summary": "A comprehensive summary of the debate (3-5 sentences)",
    "winner": "The exact name of the winning participant (must be one of: %s) or 'Tie'",
    "reasoning": "Detailed reasoning for your decision (4-6 sentences explaining why the winner prevailed)"
}

IMPORTANT: The "winner" field must contain EXACTLY one of these values: %s, or "Tie"`,
		topic, participantBlock, transcriptBlock, tokens, tokens)
}

// bulletList renders items as a truncated bullet list.
func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + truncate(item, 100)
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
