package stats

import (
	"fmt"

	"github.com/chatlens/chatlens/pkg/models"
)

// DateCount pairs a calendar date (or month) key with a message count
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// GroupStatistics is the sole artifact of the pipeline: all per-user
// aggregates plus the group-level series. Fields are populated once by
// the Aggregator and never recomputed on access.
type GroupStatistics struct {
	UserNames []string                   `json:"user_names"`
	Users     map[string]*UserStatistics `json:"users"`

	// GroupNames lists every historical group name seen in group-change
	// notices, deduplicated and sorted by length.
	GroupNames []string `json:"group_names"`

	HourlyMessages    [24]int     `json:"hourly_messages"`
	MessagesEachDay   []DateCount `json:"messages_each_day"`
	MessagesEachMonth []DateCount `json:"messages_each_month"`

	// WordStatistics is the daily usage series for TargetWord;
	// LastOccurrence is the last message observed to contain a match.
	TargetWord     string          `json:"target_word"`
	WordStatistics []DateCount     `json:"word_statistics"`
	LastOccurrence *models.Message `json:"last_occurrence,omitempty"`

	CreationDate    string `json:"creation_date"`    // oldest message, "2006-01-02 15:04:05"
	ObservationDate string `json:"observation_date"` // newest message
	Period          int    `json:"period"`           // whole days between the two
}

// NewGroupStatistics creates the aggregate for the given tracked users,
// with one empty UserStatistics per user.
func NewGroupStatistics(userNames []string) *GroupStatistics {
	g := &GroupStatistics{
		UserNames: userNames,
		Users:     make(map[string]*UserStatistics, len(userNames)),
	}
	for _, name := range userNames {
		g.Users[name] = newUserStatistics()
	}
	return g
}

// TotalMessages sums the counted messages of every tracked user
func (g *GroupStatistics) TotalMessages() int {
	sum := 0
	for _, name := range g.UserNames {
		sum += g.Users[name].MessagesSent
	}
	return sum
}

// mustUser returns the statistics entry for a tracked user. A missing
// entry means a foreign sender survived classification, which is a
// pipeline invariant violation.
func (g *GroupStatistics) mustUser(name string) *UserStatistics {
	user, ok := g.Users[name]
	if !ok {
		panic(fmt.Sprintf("stats: untracked sender %q reached aggregation", name))
	}
	return user
}
