package classify

import (
	"strings"

	"github.com/chatlens/chatlens/pkg/models"
)

// windowSize is the number of neighbor messages inspected on each side
// of a message when looking for near-duplicates.
const windowSize = 5

// spamFlags evaluates every message against its neighbors in the given
// ordering and returns one flag per message.
func spamFlags(messages []models.Message) []bool {
	flags := make([]bool, len(messages))

	for i := range messages {
		var sample []string
		// neighbors only exist away from the edges of the list
		if i > windowSize && i+windowSize < len(messages) {
			for j := i - windowSize; j <= i+windowSize; j++ {
				if j != i {
					sample = append(sample, messages[j].Content)
				}
			}
		}
		flags[i] = isSpam(messages[i].Content, sample)
	}

	return flags
}

// isSpam reports whether a message is heuristically noise: empty, a
// single degenerate token, mostly repeated words, or a near-duplicate of
// a neighboring message.
func isSpam(content string, sample []string) bool {
	return content == "" ||
		isDegenerateToken(content) ||
		wordsRepeat(content) ||
		repeatsNeighbor(content, sample)
}

// isDegenerateToken flags single-token messages longer than 80
// characters where one character makes up more than 80% of the token.
func isDegenerateToken(content string) bool {
	tokens := strings.Fields(content)
	if len(tokens) != 1 {
		return false
	}

	token := []rune(tokens[0])
	if len(token) <= 80 {
		return false
	}

	counts := make(map[rune]int)
	for _, r := range token {
		counts[r]++
	}
	for _, count := range counts {
		if float64(count)/float64(len(token))*100 > 80 {
			return true
		}
	}
	return false
}

// wordsRepeat flags messages of three or more tokens where more than
// half the tokens are repeats within the message itself.
func wordsRepeat(content string) bool {
	words := strings.Fields(content)
	return len(words) > 2 && len(wordFrequencies(content))*2 <= len(words)
}

// repeatsNeighbor flags messages whose distinct tokens overlap a
// neighbor's by more than 95%, with the larger distinct-token count as
// the denominator.
func repeatsNeighbor(content string, sample []string) bool {
	freq := wordFrequencies(content)

	for _, neighbor := range sample {
		neighborFreq := wordFrequencies(neighbor)

		common := 0
		for word := range freq {
			if _, ok := neighborFreq[word]; ok {
				common++
			}
		}

		if len(content) > 10 && len(freq) > 1 &&
			float64(common)/float64(max(len(freq), len(neighborFreq)))*100 > 95 {
			return true
		}
	}

	return false
}

// wordFrequencies maps each whitespace-delimited token of a message to
// its occurrence count.
func wordFrequencies(content string) map[string]int {
	freq := make(map[string]int)
	for _, word := range strings.Fields(content) {
		freq[word]++
	}
	return freq
}
