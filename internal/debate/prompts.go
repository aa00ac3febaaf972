package debate

import (
	"fmt"
	"strings"

	"github.com/antoniostano/dialettica/internal/conversation"
	"github.com/antoniostano/dialettica/internal/persona"
)

// BuildSystemInstruction renders the persona's identity framing plus its
// current stats and mood. Pure: same inputs, same output.
func BuildSystemInstruction(p persona.Profile, st conversation.PersonaState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "IDENTITY: %s\n", p.Identity)
	fmt.Fprintf(&b, "ROLE: %s\n", p.Role)
	if st.BrainMass > 0 {
		fmt.Fprintf(&b, "EMOTION: %s. STATS: Brain: %.1f, Depth: %.1f.\n", st.Emotion, st.BrainMass, st.ConnectionDepth)
	} else {
		fmt.Fprintf(&b, "EMOTION: %s.\n", st.Emotion)
	}
	fmt.Fprintf(&b, "STYLE: %s\n", p.Style)
	fmt.Fprintf(&b, "GOAL: %s", p.Goal)
	if len(st.Memory) > 0 {
		fmt.Fprintf(&b, "\nMEMORY: %s", strings.Join(st.Memory, ", "))
	}
	return b.String()
}

// BuildTurnPrompt renders the trailing history window and the input the
// speaker must react to. History arrives in chronological order and is
// formatted as "SENDER: text" lines.
func BuildTurnPrompt(history []conversation.Message, contextInput string) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Sender, m.Text))
	}

	var b strings.Builder
	b.WriteString("CONVERSATION HISTORY:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "INPUT TO REACT TO: %q\n\n", contextInput)
	b.WriteString("INSTRUCTION: Speak directly to the other AI. Keep it under 50 words. Be conversational.")
	return b.String()
}

// judgeSystemInstruction frames the terminal evaluation turn.
const judgeSystemInstruction = `IDENTITY: Judge AI.
TASK: Evaluate the conversation loop. Declare a winner or tie.
OUTPUT: A short verdict in plain prose, under 40 words.`
