package constant

import "strconv"

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// Default persona when the client does not supply a system instruction.
	DefaultSystemInstruction = "당신은 친절하고 도움이 되는 AI 어시스턴트입니다. 사용자의 질문에 정확하고 유용한 답변을 한국어로 제공하세요."

	// Prefix prepended to the user query before hybrid search so the
	// retrieved documents lean toward tax-accounting consultation context.
	SearchQueryContextPrefix = "당신은 세무 회계 상담가 입니다. 질문 파악, 핵심 쟁점, 결론, 근거를 제시하며 답변하세요."

	// User-facing error messages carried in agent state.
	ErrMsgEmptyQuestion  = "질문을 입력해주세요."
	ErrMsgQuotaExceeded  = "LLM API 할당량이 초과되었습니다. API 키의 사용량을 확인하거나 결제 정보를 확인해주세요."
	ErrMsgLLMCallFailed  = "LLM 호출 중 오류 발생: "
	ErrMsgStreamingError = "LLM 스트리밍 중 오류: "

	// Document types stored in the vector index.
	DocumentTypeConsultation = "consultation"
	DocumentTypeLawArticle   = "lawArticle"

	// Validation judge prompts.
	ValidationSystemPrompt = "당신은 AI 답변 검수 전문가입니다. 주어진 답변을 객관적으로 평가하고 JSON 형식으로 결과를 제공하세요."

	ValidationPromptTemplate = `다음은 AI 어시스턴트가 사용자 질문에 대해 생성한 답변입니다. 답변의 품질을 평가하고 검수해주세요.

사용자 질문: %s

AI 답변: %s

다음 형식으로 JSON 응답을 제공해주세요:
{
  "score": 0.0-1.0 (답변 품질 점수),
  "passed": true/false (최소 점수 이상인지),
  "feedback": "검수 피드백",
  "needsRegeneration": true/false (재생성이 필요한지)
}

평가 기준:
- 정확성: 답변이 정확한 정보를 제공하는가?
- 관련성: 답변이 질문과 관련이 있는가?
- 완전성: 답변이 질문에 충분히 답하는가?
- 명확성: 답변이 명확하고 이해하기 쉬운가?
- 적절성: 답변이 적절한 톤과 스타일인가?`

	// Ollama defaults.
	OllamaDefaultBaseURL = "http://localhost:11434"
	OllamaDefaultModel   = "llama3.1:8b"
	OllamaChatEndpoint   = "/api/chat"
)

// ErrMsgMaxIterations builds the iteration-cap message with the configured limit.
func ErrMsgMaxIterations(max int) string {
	return "최대 LLM 호출 횟수(" + strconv.Itoa(max) + "회)를 초과했습니다. 요청이 너무 복잡합니다."
}
