package persona

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/honeypot/internal/classifier"
	"github.com/MikeSquared-Agency/honeypot/internal/conversation"
)

// Goal is the conversational objective for a stage of the engagement.
type Goal int

const (
	GoalClarify Goal = iota
	GoalComply
	GoalStall
	GoalWrapUp
)

var goalDescriptions = map[Goal]string{
	GoalClarify: "Express concern and ask clarifying questions to understand the situation better",
	GoalComply:  "Show willingness to comply but ask for verification details (phone number, website, company name, etc.)",
	GoalStall:   "Claim technical difficulties or ask for alternative methods. Extract payment details if offered.",
	GoalWrapUp:  "Start showing slight suspicion or say you need to consult someone, but still extract any final details",
}

func (g Goal) String() string {
	return goalDescriptions[g]
}

// StageGoal maps the session's message count to a goal.
func StageGoal(messageCount int) Goal {
	switch {
	case messageCount < 5:
		return GoalClarify
	case messageCount < 12:
		return GoalComply
	case messageCount < 20:
		return GoalStall
	default:
		return GoalWrapUp
	}
}

// HistoryWindow is how many prior turns the prompt carries.
const HistoryWindow = 6

// Prompt is the payload for the external text generator.
type Prompt struct {
	Persona Persona
	Goal    Goal
	System  string
	User    string
}

const systemTemplate = `You are pretending to be a %s victim of a scam. Your goal is to extract information from the scammer while appearing believable.

PERSONA: %s
EXAMPLE RESPONSE: %s

SCAM TYPE: %s
CURRENT GOAL: %s

RULES:
1. NEVER reveal you know it's a scam
2. Ask questions that might make the scammer reveal:
   - Phone numbers
   - UPI IDs or payment details
   - Website links
   - Company/organization names
   - Bank account details
3. Keep responses short (1-3 sentences)
4. Show appropriate emotion (worry, confusion, eagerness)
5. Sometimes make spelling/grammar mistakes to seem more human
6. Ask for verification but be willing to proceed

PREVIOUS CONVERSATION:
%s
LATEST SCAMMER MESSAGE: %s

Respond as this persona would, naturally continuing the conversation:`

// BuildPrompt renders the generator prompt. Same inputs, same prompt.
func BuildPrompt(p Persona, category classifier.Category, goal Goal, history []conversation.Message, latest string) Prompt {
	profile := p.Profile()
	return Prompt{
		Persona: p,
		Goal:    goal,
		System: fmt.Sprintf(systemTemplate,
			p, profile.Style, profile.Sample,
			category, goal,
			formatHistory(history),
			latest,
		),
		User: latest,
	}
}

func formatHistory(history []conversation.Message) string {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}
	var sb strings.Builder
	for _, m := range history {
		role := "You"
		if m.Sender == conversation.Counterpart {
			role = "Scammer"
		}
		fmt.Fprintf(&sb, "%s: %s\n", role, m.Text)
	}
	return sb.String()
}
