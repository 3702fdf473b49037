package prompt

import (
	"strings"

	"ai-taxconsult-be/pkg/agent/state"
	"ai-taxconsult-be/pkg/llm"
)

// ContextBuilder enriches a system instruction with retrieved reference
// material so the model grounds its answer in real consultation cases and
// law articles instead of free-associating.
type ContextBuilder struct {
	instruction   string
	searchContext string
}

func NewContextBuilder(instruction, searchContext string) *ContextBuilder {
	return &ContextBuilder{
		instruction:   instruction,
		searchContext: searchContext,
	}
}

// Build returns the final system instruction. Without search context the
// base instruction passes through untouched.
func (b *ContextBuilder) Build() string {
	if strings.TrimSpace(b.searchContext) == "" {
		return b.instruction
	}

	var prompt strings.Builder
	prompt.WriteString(b.instruction)
	prompt.WriteString("\n\n<reference_material>\n")
	prompt.WriteString(b.searchContext)
	prompt.WriteString("\n</reference_material>\n\n")
	prompt.WriteString("위 참고 자료를 바탕으로 답변하세요. 참고 자료에 없는 내용은 일반적인 지식으로 보완하되, 추측은 명시하세요.")
	return prompt.String()
}

// BuildMessages assembles the provider message list for one turn:
// system instruction first, then prior history, then the current question.
func BuildMessages(systemInstruction string, history []state.Message, userText string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: state.RoleSystem, Content: systemInstruction})
	for _, m := range history {
		if m.Role == state.RoleSystem {
			continue
		}
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: state.RoleUser, Content: userText})
	return messages
}
