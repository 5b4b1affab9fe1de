package llm

// UserTurn builds a conversation turn authored by the user.
func UserTurn(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantTurn builds a conversation turn authored by the assistant.
func AssistantTurn(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// SystemTurn builds the persona turn that leads every chat completion call.
func SystemTurn(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// CloneTurns returns a copy of turns that shares no backing array with the input.
func CloneTurns(turns []Message) []Message {
	if turns == nil {
		return nil
	}
	out := make([]Message, len(turns))
	copy(out, turns)
	return out
}
