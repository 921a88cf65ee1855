package prompt

import (
	"fmt"
	"strings"

	"github.com/luminagear/lumina-support/internal/models"
)

// BuildStoreContext renders the store profile as a single text block.
func BuildStoreContext(profile StoreProfile) string {
	lines := []string{
		"STORE INFORMATION:",
		"Store Name: " + profile.Name,
		"Specialty: " + profile.Specialty,
		"Shipping Policy: " + profile.Shipping,
		"Return Policy: " + profile.Returns,
		"Business Hours: " + profile.Hours,
		"Location: " + profile.Location,
		"Current Promotions: " + profile.CurrentPromotions,
	}
	return strings.Join(lines, "\n")
}

// RenderMessage renders one message as a "sender: text" history line.
func RenderMessage(msg models.Message) string {
	return fmt.Sprintf("%s: %s", msg.Sender, msg.Text)
}

// Assemble builds the ordered content segments sent to the provider:
// store context, then the history lines oldest first, then the new user
// message. Empty segments are dropped. The system instruction is not part
// of this sequence; it travels as a separate provider parameter.
func Assemble(storeContext string, history []models.Message, userMessage string) []string {
	segments := make([]string, 0, len(history)+2)
	if storeContext != "" {
		segments = append(segments, storeContext)
	}
	for _, msg := range history {
		if line := RenderMessage(msg); line != "" {
			segments = append(segments, line)
		}
	}
	if userMessage != "" {
		segments = append(segments, fmt.Sprintf("%s: %s", models.SenderUser, userMessage))
	}
	return segments
}
