package repository

import (
	"fmt"
	"strings"
)

// Filter assembles the WHERE clause for owner-scoped queries with
// positional placeholders. The only constructor is NewOwnerFilter, which
// seeds the ownership clause as condition #1, so no combination of optional
// filters can produce a query that is not scoped to the owning user.
type Filter struct {
	conditions []string
	args       []interface{}
}

func NewOwnerFilter(userID string) *Filter {
	f := &Filter{}
	return f.And("user_id = %s", userID)
}

// And appends a condition, AND-combined with the existing ones. Each %s verb
// in format is replaced by the positional placeholder ($n) of the matching
// argument. Condition text is always caller-side literal SQL; user input
// only ever travels through args.
func (f *Filter) And(format string, args ...interface{}) *Filter {
	placeholders := make([]interface{}, len(args))
	for i, arg := range args {
		f.args = append(f.args, arg)
		placeholders[i] = fmt.Sprintf("$%d", len(f.args))
	}
	f.conditions = append(f.conditions, fmt.Sprintf(format, placeholders...))
	return f
}

// Where renders the full WHERE clause.
func (f *Filter) Where() string {
	return " WHERE " + strings.Join(f.conditions, " AND ")
}

// Args returns the positional arguments in placeholder order.
func (f *Filter) Args() []interface{} {
	return f.args
}

// ILikeContains wraps a search term for substring, case-insensitive match.
func ILikeContains(term string) string {
	return "%" + escapeLike(term) + "%"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
