// Package classify partitions the parsed message list into tracked human
// messages, system notices, spam and foreign-sender messages, and
// sub-classifies the notices into typed events. The three filter passes
// are order-sensitive: notices first, then spam, then foreign senders.
package classify

import (
	"strings"

	"github.com/chatlens/chatlens/pkg/models"
)

// Classifier filters a message list against an immutable keyword list,
// tracked-user list and notice rule set built at pipeline start.
type Classifier struct {
	keywords []string
	users    []string
	rules    Rules
}

// New creates a classifier. users must be canonical names in stable
// order; keyword and user order decide match precedence.
func New(keywords []string, users []string, rules Rules) *Classifier {
	return &Classifier{
		keywords: keywords,
		users:    users,
		rules:    rules,
	}
}

// Result holds the disjoint partitions of one classification run
type Result struct {
	Clean   []models.Message // tracked human messages
	Notices []models.Message // system-generated notices
	Spam    []models.Message
	Foreign []models.Message // untracked senders

	NameChanges  []Notice
	GroupChanges []Notice
	PhotoChanges []Notice
	ThemeChanges []Notice
}

// Classify partitions messages. The input slice is not modified.
func (c *Classifier) Classify(messages []models.Message) *Result {
	result := &Result{}

	working := make([]models.Message, len(messages))
	copy(working, messages)

	working = c.extractNotices(working, result)
	working = c.removeSpam(working, result)
	working = c.removeForeign(working, result)
	result.Clean = working

	c.subClassify(result)

	return result
}

// extractNotices moves every message whose content starts with
// "<tracked user> <keyword>" into the notices list.
func (c *Classifier) extractNotices(messages []models.Message, result *Result) []models.Message {
	remaining := messages[:0]
	for _, msg := range messages {
		if _, _, ok := firstPrefixMatch(msg.Content, c.keywords, c.users); ok {
			msg.Kind = models.KindNotice
			result.Notices = append(result.Notices, msg)
			continue
		}
		remaining = append(remaining, msg)
	}
	return remaining
}

// removeSpam flags spam against the pre-removal ordering, then removes
// all flagged messages in one batch so flags cannot affect each other's
// window contents.
func (c *Classifier) removeSpam(messages []models.Message, result *Result) []models.Message {
	flags := spamFlags(messages)

	remaining := messages[:0]
	for i, msg := range messages {
		if flags[i] {
			result.Spam = append(result.Spam, msg)
			continue
		}
		remaining = append(remaining, msg)
	}
	return remaining
}

// removeForeign drops messages whose sender is not a tracked user
func (c *Classifier) removeForeign(messages []models.Message, result *Result) []models.Message {
	tracked := make(map[string]bool, len(c.users))
	for _, user := range c.users {
		tracked[user] = true
	}

	remaining := messages[:0]
	for _, msg := range messages {
		if !tracked[msg.Sender] {
			result.Foreign = append(result.Foreign, msg)
			continue
		}
		remaining = append(remaining, msg)
	}
	return remaining
}

// firstPrefixMatch returns the first (keyword, user) pair, keywords
// outer and users inner, for which content starts with
// "<user> <keyword>". The iteration order preserves exact match
// precedence.
func firstPrefixMatch(content string, keywords, users []string) (keyword, user string, ok bool) {
	for _, kw := range keywords {
		for _, u := range users {
			if strings.HasPrefix(content, u+" "+kw) {
				return kw, u, true
			}
		}
	}
	return "", "", false
}
