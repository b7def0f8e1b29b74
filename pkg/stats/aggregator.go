// Package stats aggregates classified messages into per-user and
// per-group statistics. Aggregation is a single-pass batch over
// already-partitioned, immutable data; each pass fills one statistic.
package stats

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chatlens/chatlens/pkg/classify"
	"github.com/chatlens/chatlens/pkg/models"
)

const (
	dateFormat     = "2006-01-02"
	monthFormat    = "2006-01"
	dateTimeFormat = "2006-01-02 15:04:05"

	topWordCount  = 5
	minWordLength = 4
	maxWordLength = 9
)

// Aggregator computes a GroupStatistics from one classification result.
type Aggregator struct {
	users      []string
	targetWord string
}

// NewAggregator creates an aggregator for the given tracked users and
// target word.
func NewAggregator(users []string, targetWord string) *Aggregator {
	return &Aggregator{
		users:      users,
		targetWord: targetWord,
	}
}

// Aggregate walks the cleaned message set, the spam list and the typed
// notices and returns the fully populated group aggregate. raw is the
// parsed message list before classification (newest-first, as exported),
// used for the observed span and the creation/observation timestamps.
func (a *Aggregator) Aggregate(result *classify.Result, raw []models.Message) *GroupStatistics {
	g := NewGroupStatistics(a.users)
	cleaned := result.Clean

	a.countMessages(g, cleaned)
	a.wordFrequency(g, cleaned)
	a.commonWords(g)

	a.allocateNicknames(g, result.NameChanges)
	a.collectGroupNames(g, result.GroupChanges)
	a.countPhotoChanges(g, result.PhotoChanges)
	a.countThemeChanges(g, result.ThemeChanges)

	a.averages(g)
	a.spamStats(g, result.Spam)
	a.reactions(g, cleaned)

	span := daySpan(raw)
	a.messagesEachDay(g, cleaned, span)
	a.messagesEachMonth(g, cleaned, span)
	a.wordStatistics(g, cleaned, span)
	a.hourlyMessages(g, cleaned)

	a.timestamps(g, raw)

	return g
}

// countMessages fills per-user message, word and character counts over
// the cleaned set. Words are whitespace tokens, characters are the rune
// length of the content.
func (a *Aggregator) countMessages(g *GroupStatistics, messages []models.Message) {
	for _, msg := range messages {
		user := g.mustUser(msg.Sender)
		user.MessagesSent++
		user.WordsSent += len(strings.Fields(msg.Content))
		user.CharsSent += utf8.RuneCountInString(msg.Content)
	}
}

// wordFrequency fills each user's case-folded token frequency table
func (a *Aggregator) wordFrequency(g *GroupStatistics, messages []models.Message) {
	for _, msg := range messages {
		user := g.mustUser(msg.Sender)
		for _, word := range strings.Fields(strings.ToLower(msg.Content)) {
			user.WordFrequency[word]++
		}
	}
}

// commonWords derives the top-5 tables for token lengths 4 through 9
// from each user's frequency table. Ties break on frequency descending,
// then lexicographically.
func (a *Aggregator) commonWords(g *GroupStatistics) {
	for _, name := range a.users {
		user := g.Users[name]
		for length := minWordLength; length <= maxWordLength; length++ {
			user.CommonWords[length] = topWords(user.WordFrequency, length, topWordCount)
		}
	}
}

// topWords returns the up-to-n most frequent words of exactly the given
// rune length.
func topWords(frequency map[string]int, length, n int) []WordCount {
	var words []WordCount
	for word, count := range frequency {
		if utf8.RuneCountInString(word) == length {
			words = append(words, WordCount{Word: word, Count: count})
		}
	}

	sort.Slice(words, func(i, j int) bool {
		if words[i].Count == words[j].Count {
			return words[i].Word < words[j].Word
		}
		return words[i].Count > words[j].Count
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}

// allocateNicknames assigns extracted nicknames to the users they apply
// to and counts the name changes against the acting user. A name change
// whose subject could not be resolved (or is not tracked) still counts
// for the actor but allocates no nickname.
func (a *Aggregator) allocateNicknames(g *GroupStatistics, notices []classify.Notice) {
	for _, notice := range notices {
		g.mustUser(notice.Actor).NamesChanged++
		if subject, ok := g.Users[notice.Subject]; ok {
			subject.Nicknames = append(subject.Nicknames, notice.Value)
		}
	}

	for _, name := range a.users {
		user := g.Users[name]
		user.Nicknames = dedupeSortByLength(user.Nicknames)
	}
}

// collectGroupNames gathers historical group names and counts the
// group-name changes against the acting user.
func (a *Aggregator) collectGroupNames(g *GroupStatistics, notices []classify.Notice) {
	for _, notice := range notices {
		g.GroupNames = append(g.GroupNames, notice.Value)
		g.mustUser(notice.Actor).GroupNameChanged++
	}
	g.GroupNames = dedupeSortByLength(g.GroupNames)
}

func (a *Aggregator) countPhotoChanges(g *GroupStatistics, notices []classify.Notice) {
	for _, notice := range notices {
		g.mustUser(notice.Actor).PhotoChanged++
	}
}

func (a *Aggregator) countThemeChanges(g *GroupStatistics, notices []classify.Notice) {
	for _, notice := range notices {
		g.mustUser(notice.Actor).ThemeChanged++
	}
}

// averages fills the per-user average message length in words and the
// average word length in characters (chars per word, not per message).
func (a *Aggregator) averages(g *GroupStatistics) {
	for _, name := range a.users {
		user := g.Users[name]
		if user.MessagesSent > 0 {
			user.AverageWords = float64(user.WordsSent) / float64(user.MessagesSent)
		}
		if user.WordsSent > 0 {
			user.AverageChars = float64(user.CharsSent) / float64(user.WordsSent)
		}
	}
}

// spamStats fills per-user spam counts over the spam list. Spam removal
// runs before foreign-sender removal, so spam from untracked senders is
// skipped here.
func (a *Aggregator) spamStats(g *GroupStatistics, spam []models.Message) {
	for _, msg := range spam {
		user, ok := g.Users[msg.Sender]
		if !ok {
			continue
		}
		user.SpamMessagesSent++
		user.SpamWordsSent += len(strings.Fields(msg.Content))
		user.SpamCharsSent += utf8.RuneCountInString(msg.Content)
	}
}

// reactions counts reactions received by each tracked sender and
// reactions sent by tracked actors. Received counts every reaction on a
// tracked message regardless of actor; sent requires the actor to be
// tracked.
func (a *Aggregator) reactions(g *GroupStatistics, messages []models.Message) {
	for _, msg := range messages {
		if len(msg.Reactions) == 0 {
			continue
		}
		g.mustUser(msg.Sender).ReactionsReceived += len(msg.Reactions)
		for _, reaction := range msg.Reactions {
			if actor, ok := g.Users[reaction.Actor]; ok {
				actor.ReactionsSent++
			}
		}
	}
}

// messagesEachDay fills the daily message-count series, pre-seeded at
// zero for every calendar day in the observed span.
func (a *Aggregator) messagesEachDay(g *GroupStatistics, messages []models.Message, span []time.Time) {
	counts := make(map[string]int, len(span))
	for _, day := range span {
		counts[day.Format(dateFormat)] = 0
	}
	for _, msg := range messages {
		counts[msg.Time().Format(dateFormat)]++
	}
	g.MessagesEachDay = sortedDateCounts(counts)
}

// messagesEachMonth fills the monthly message-count series over the
// same span.
func (a *Aggregator) messagesEachMonth(g *GroupStatistics, messages []models.Message, span []time.Time) {
	counts := make(map[string]int)
	for _, day := range span {
		counts[day.Format(monthFormat)] = 0
	}
	for _, msg := range messages {
		counts[msg.Time().Format(monthFormat)]++
	}
	g.MessagesEachMonth = sortedDateCounts(counts)
}

// wordStatistics fills the daily usage series for the target word. A
// token matches if it is the target word with any letter consecutively
// repeated, case-insensitive; each matching token counts once. The last
// message observed to contain a match is recorded.
func (a *Aggregator) wordStatistics(g *GroupStatistics, messages []models.Message, span []time.Time) {
	g.TargetWord = a.targetWord

	counts := make(map[string]int, len(span))
	for _, day := range span {
		counts[day.Format(dateFormat)] = 0
	}

	matcher := repeatedLetterMatcher(a.targetWord)
	for i := range messages {
		for _, word := range strings.Fields(messages[i].Content) {
			if matcher.MatchString(strings.ToLower(word)) {
				counts[messages[i].Time().Format(dateFormat)]++
				g.LastOccurrence = &messages[i]
			}
		}
	}

	g.WordStatistics = sortedDateCounts(counts)
}

// repeatedLetterMatcher builds a whole-token matcher that accepts the
// word with every letter repeated one or more times consecutively, e.g.
// "cat" matches "ccaatt".
func repeatedLetterMatcher(word string) *regexp.Regexp {
	var pattern strings.Builder
	pattern.WriteString("^")
	for _, r := range strings.ToLower(word) {
		pattern.WriteString(regexp.QuoteMeta(string(r)))
		pattern.WriteString("+")
	}
	pattern.WriteString("$")
	return regexp.MustCompile(pattern.String())
}

// hourlyMessages fills the 24-bucket time-of-day histogram. Buckets are
// half-open on the hour: a message at exactly H:00:00 falls in bucket H.
func (a *Aggregator) hourlyMessages(g *GroupStatistics, messages []models.Message) {
	for _, msg := range messages {
		g.HourlyMessages[msg.Time().Hour()]++
	}
}

// timestamps fills the creation and observation timestamps from the raw
// newest-first list (last element is the oldest message) and the day
// period between them.
func (a *Aggregator) timestamps(g *GroupStatistics, raw []models.Message) {
	if len(raw) == 0 {
		return
	}

	creation := raw[len(raw)-1].Time()
	observation := raw[0].Time()
	g.CreationDate = creation.Format(dateTimeFormat)
	g.ObservationDate = observation.Format(dateTimeFormat)

	// day difference between the calendar dates, immune to DST offsets
	from := time.Date(creation.Year(), creation.Month(), creation.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(observation.Year(), observation.Month(), observation.Day(), 0, 0, 0, 0, time.UTC)
	g.Period = int(to.Sub(from).Hours() / 24)
}

// daySpan returns every calendar day between the earliest and latest
// message timestamp, inclusive, by daily iteration. min/max is taken
// over all timestamps so a non-monotonic export cannot place a message
// outside the span.
func daySpan(messages []models.Message) []time.Time {
	if len(messages) == 0 {
		return nil
	}

	earliest, latest := messages[0].Timestamp, messages[0].Timestamp
	for _, msg := range messages[1:] {
		if msg.Timestamp < earliest {
			earliest = msg.Timestamp
		}
		if msg.Timestamp > latest {
			latest = msg.Timestamp
		}
	}

	start := truncateToDay(time.UnixMilli(earliest))
	end := truncateToDay(time.UnixMilli(latest))

	var days []time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

// dedupeSortByLength removes duplicates and sorts ascending by string
// length, ties lexicographic. Used for nickname and group-name lists.
func dedupeSortByLength(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) == len(out[j]) {
			return out[i] < out[j]
		}
		return len(out[i]) < len(out[j])
	})
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// sortedDateCounts flattens a date-keyed count map into a slice sorted
// ascending by date key.
func sortedDateCounts(counts map[string]int) []DateCount {
	out := make([]DateCount, 0, len(counts))
	for date, count := range counts {
		out = append(out, DateCount{Date: date, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
