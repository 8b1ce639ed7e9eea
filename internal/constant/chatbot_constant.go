package constant

const (
	ChatMessageRoleUser  = "user"
	ChatMessageRoleModel = "model"

	ChatInitialGreeting = "Hi, how can I help you with your documents?"
)
