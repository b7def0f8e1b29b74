package classify

import (
	"strings"

	"github.com/chatlens/chatlens/pkg/models"
)

// Class identifies the typed event a notice reports
type Class string

const (
	ClassNameChange  Class = "nameChange"
	ClassGroupChange Class = "groupChange"
	ClassPhotoChange Class = "photoChange"
	ClassThemeChange Class = "themeChange"
)

// SubjectMode selects how the subject of a name-change notice is
// resolved: the notice's sender, a fixed well-known user, or a scan of
// the message text for a tracked name.
type SubjectMode int

const (
	SubjectSender SubjectMode = iota
	SubjectFixed
	SubjectScan
)

// NameRule binds a name-change keyword phrase to its subject resolution
type NameRule struct {
	Keyword   string
	Mode      SubjectMode
	FixedUser string // only for SubjectFixed
}

// Rules holds the keyword phrases for each typed event class. Within a
// class, keyword order decides precedence; classes are tried in the
// order nameChange, groupChange, photoChange, themeChange.
type Rules struct {
	NameChange  []NameRule
	GroupChange []string
	PhotoChange []string
	ThemeChange []string
}

// DefaultRules returns the rule set for English-language exports. owner
// is the exporting user, the implied subject of "your nickname" notices;
// empty means those notices resolve to no subject.
func DefaultRules(owner string) Rules {
	return Rules{
		NameChange: []NameRule{
			{Keyword: "changed their own nickname to", Mode: SubjectSender},
			{Keyword: "set your nickname to", Mode: SubjectFixed, FixedUser: owner},
			{Keyword: "changed your nickname to", Mode: SubjectFixed, FixedUser: owner},
			{Keyword: "changed the nickname for", Mode: SubjectScan},
		},
		GroupChange: []string{
			"named the group",
			"changed the group name to",
		},
		PhotoChange: []string{
			"changed the group photo.",
		},
		ThemeChange: []string{
			"changed the chat theme to",
		},
	}
}

// Notice is a system message classified into one of the typed event
// classes. Actor is the user whose action generated the notice (the
// matched prefix name), Value the extracted new name or group name where
// the class carries one, and Subject the user a name change applies to.
type Notice struct {
	Message models.Message
	Class   Class
	Actor   string
	Value   string
	Subject string
}

// subClassify sorts the notices list into the four typed event lists.
// Classes are tried in order and the first match wins; a notice matching
// no class is dropped, which is intentional (exports contain notices the
// pipeline does not track, like call logs and member changes).
func (c *Classifier) subClassify(result *Result) {
	for _, msg := range result.Notices {
		if notice, ok := c.classifyNameChange(msg); ok {
			result.NameChanges = append(result.NameChanges, notice)
			continue
		}
		if notice, ok := c.classifyValued(msg, ClassGroupChange, c.rules.GroupChange); ok {
			result.GroupChanges = append(result.GroupChanges, notice)
			continue
		}
		if notice, ok := c.classifyCounted(msg, ClassPhotoChange, c.rules.PhotoChange); ok {
			result.PhotoChanges = append(result.PhotoChanges, notice)
			continue
		}
		if notice, ok := c.classifyCounted(msg, ClassThemeChange, c.rules.ThemeChange); ok {
			result.ThemeChanges = append(result.ThemeChanges, notice)
		}
	}
}

// classifyNameChange matches name-change rules and resolves the subject
// whose nickname changed, which is not always the sender.
func (c *Classifier) classifyNameChange(msg models.Message) (Notice, bool) {
	for _, rule := range c.rules.NameChange {
		for _, user := range c.users {
			prefix := user + " " + rule.Keyword
			if !strings.HasPrefix(msg.Content, prefix) {
				continue
			}
			return Notice{
				Message: msg,
				Class:   ClassNameChange,
				Actor:   user,
				Value:   namePart(msg.Content, prefix),
				Subject: c.resolveSubject(rule, user, msg.Content[len(prefix):]),
			}, true
		}
	}
	return Notice{}, false
}

// classifyValued matches classes that carry an extracted value
func (c *Classifier) classifyValued(msg models.Message, class Class, keywords []string) (Notice, bool) {
	keyword, user, ok := firstPrefixMatch(msg.Content, keywords, c.users)
	if !ok {
		return Notice{}, false
	}
	return Notice{
		Message: msg,
		Class:   class,
		Actor:   user,
		Value:   namePart(msg.Content, user+" "+keyword),
	}, true
}

// classifyCounted matches classes that only feed an action counter
func (c *Classifier) classifyCounted(msg models.Message, class Class, keywords []string) (Notice, bool) {
	_, user, ok := firstPrefixMatch(msg.Content, keywords, c.users)
	if !ok {
		return Notice{}, false
	}
	return Notice{
		Message: msg,
		Class:   class,
		Actor:   user,
	}, true
}

// resolveSubject determines whose nickname a name-change notice is
// about. For scan rules the remainder of the message text after the
// matched prefix is searched for a tracked name, first match in user
// order; none found means no subject.
func (c *Classifier) resolveSubject(rule NameRule, sender, remainder string) string {
	switch rule.Mode {
	case SubjectSender:
		return sender
	case SubjectFixed:
		return rule.FixedUser
	default:
		for _, user := range c.users {
			if strings.Contains(remainder, user) {
				return user
			}
		}
		return ""
	}
}

// namePart extracts the changed value following a matched notice prefix.
// Exactly one trailing period is stripped if present; surrounding
// whitespace is kept as-is.
func namePart(content, prefix string) string {
	if len(content) <= len(prefix)+1 {
		return ""
	}
	return strings.TrimSuffix(content[len(prefix)+1:], ".")
}
