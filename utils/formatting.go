package utils

import (
	"fmt"
	"strings"
)

// markdownV2Escaper escapes every character the MarkdownV2 parse mode treats as markup.
var markdownV2Escaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
	"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
)

// EscapeMarkdown escapes the special characters of the MarkdownV2 parse mode.
//
// Args:
//   - text: The text to escape.
//
// Returns:
//   - string: The escaped text, safe to embed into a MarkdownV2 message.
func EscapeMarkdown(text string) string {
	return markdownV2Escaper.Replace(text)
}

// MentionMarkdown builds an inline mention of a user for the MarkdownV2 parse mode.
//
// Args:
//   - userID: The identifier of the user to mention.
//   - name: The text displayed for the mention.
//
// Returns:
//   - string: The mention markup.
func MentionMarkdown(userID int64, name string) string {
	return fmt.Sprintf("[%s](tg://user?id=%d)", EscapeMarkdown(name), userID)
}

// UsernameToURL generates a t.me link for the provided username.
//
// The leading "@" is stripped when present.
//
// Args:
//   - username: The username to link to.
//
// Returns:
//   - string: The generated URL.
func UsernameToURL(username string) string {
	return "https://t.me/" + strings.TrimPrefix(username, "@")
}
