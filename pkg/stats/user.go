package stats

// WordCount pairs a word with the number of times a user sent it
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// UserStatistics is the per-user aggregate. One instance exists per
// tracked user for the lifetime of a pipeline run; it is mutated only by
// the aggregation passes and read-only afterwards.
type UserStatistics struct {
	MessagesSent int `json:"messages_sent"`
	WordsSent    int `json:"words_sent"`
	CharsSent    int `json:"chars_sent"`

	SpamMessagesSent int `json:"spam_messages_sent"`
	SpamWordsSent    int `json:"spam_words_sent"`
	SpamCharsSent    int `json:"spam_chars_sent"`

	NamesChanged     int `json:"names_changed"`
	GroupNameChanged int `json:"group_name_changed"`
	PhotoChanged     int `json:"photo_changed"`
	ThemeChanged     int `json:"theme_changed"`

	ReactionsSent     int `json:"reactions_sent"`
	ReactionsReceived int `json:"reactions_received"`

	AverageWords float64 `json:"average_words"` // words per message
	AverageChars float64 `json:"average_chars"` // chars per word

	Nicknames []string `json:"nicknames"`

	// WordFrequency maps every case-folded token the user sent to its
	// count; CommonWords holds the derived top-5 tables keyed by exact
	// token length, 4 through 9.
	WordFrequency map[string]int      `json:"word_frequency"`
	CommonWords   map[int][]WordCount `json:"common_words"`
}

func newUserStatistics() *UserStatistics {
	return &UserStatistics{
		WordFrequency: make(map[string]int),
		CommonWords:   make(map[int][]WordCount),
	}
}
