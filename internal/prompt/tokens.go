package prompt

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// EstimateTokens gives a rough token count for the assembled segments,
// used for debug logging of prompt size. The cl100k_base encoding is an
// approximation for non-OpenAI models; when the encoding cannot be loaded
// a word count stands in.
func EstimateTokens(segments []string) int {
	joined := strings.Join(segments, "\n")
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return len(strings.Fields(joined))
	}
	return len(enc.Encode(joined, nil, nil))
}
