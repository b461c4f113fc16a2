package knowledge

import (
	"fmt"
	"strings"
)

const answerSeparator = "\n\n---\n\n"

// ComposeGeneratedAnswer appends the article body to the chat reply.
func ComposeGeneratedAnswer(chatResponse, content string) string {
	chatResponse = strings.TrimSpace(chatResponse)
	if chatResponse == "" {
		return content
	}
	return chatResponse + answerSeparator + content
}

// ComposeArchiveAnswer is the reply for a topic served from storage.
func ComposeArchiveAnswer(name, content string) string {
	return fmt.Sprintf("**[ARCHIVE RETRIEVED]**\nData regarding [[%s]] found in the archives.%s%s", name, answerSeparator, content)
}
