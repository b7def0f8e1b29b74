package aliases

import (
	"strings"

	"github.com/chatlens/chatlens/pkg/models"
)

// Resolver rewrites notice messages so the leading subject name is the
// canonical user name rather than an alias. It must run before
// classification so keyword and name matching always sees canonical
// names.
type Resolver struct {
	keywords []string
	table    *Table
}

// NewResolver creates a resolver over a keyword list and alias table
func NewResolver(keywords []string, table *Table) *Resolver {
	return &Resolver{
		keywords: keywords,
		table:    table,
	}
}

// Resolve rewrites messages in place. For every message the keywords are
// tried in order, then every canonical user, then each of its aliases; a
// message whose content starts with "<alias> <keyword>" but not already
// with "<canonical> <keyword>" has the leading alias replaced by the
// canonical name, remainder verbatim. At most one rewrite happens per
// message, so running Resolve twice is a no-op.
func (r *Resolver) Resolve(messages []models.Message) {
	for i := range messages {
		r.resolveMessage(&messages[i])
	}
}

func (r *Resolver) resolveMessage(msg *models.Message) {
	for _, keyword := range r.keywords {
		for _, user := range r.table.Names() {
			canonical := user + " " + keyword
			for _, alias := range r.table.Aliases(user) {
				aliased := alias + " " + keyword
				if strings.HasPrefix(msg.Content, aliased) &&
					!strings.HasPrefix(msg.Content, canonical) {
					msg.Content = user + " " + msg.Content[len(alias)+1:]
					return
				}
			}
		}
	}
}
