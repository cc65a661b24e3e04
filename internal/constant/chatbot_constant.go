package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// ProfanityDenialMessage is returned verbatim when the safety filter
	// flags a question. It is never produced by a model call.
	ProfanityDenialMessage = "부적절한 표현이 감지되어 답변을 드릴 수 없습니다. 바른 표현으로 다시 질문해 주시면 성심껏 안내해 드리겠습니다."

	// CategoryDenied labels denied requests in responses and chat logs.
	CategoryDenied = "차단"
)
