package domain

import (
	"chat-client/errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Criterion is one field messages can be compared on.
type Criterion int

const (
	Author Criterion = iota + 1
	Date
	Content
)

func (c Criterion) String() string {
	switch c {
	case Author:
		return "author"
	case Date:
		return "date"
	case Content:
		return "content"
	default:
		return fmt.Sprintf("criterion(%d)", int(c))
	}
}

func (c Criterion) Valid() bool {
	return c >= Author && c <= Content
}

// ParseCriterion accepts "author", "date" or "content", case-insensitively.
func ParseCriterion(s string) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "author":
		return Author, nil
	case "date":
		return Date, nil
	case "content":
		return Content, nil
	default:
		return 0, fmt.Errorf("%w: %q", errors.ErrUnknownCriterion, s)
	}
}

// ParseCriteria parses a comma separated list such as "author,date".
// Duplicates keep their first position.
func ParseCriteria(s string) ([]Criterion, error) {
	parts := lo.Compact(lo.Map(strings.Split(s, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
	criteria := make([]Criterion, 0, len(parts))
	for _, p := range parts {
		c, err := ParseCriterion(p)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	return lo.Uniq(criteria), nil
}

// FormatCriteria is the inverse of ParseCriteria.
func FormatCriteria(criteria []Criterion) string {
	return strings.Join(lo.Map(criteria, func(c Criterion, _ int) string {
		return c.String()
	}), ",")
}

// Ordering holds the active sort criteria of a session.
// Criteria are applied in insertion order; each criterion appears at most once.
// Changing the criteria changes how every existing Message sorts and which
// messages are considered equivalent, without touching any Message.
type Ordering struct {
	mu       sync.RWMutex
	criteria []Criterion
}

// NewOrdering returns an ordering on the given criteria, or on Date alone
// when none is given.
func NewOrdering(criteria ...Criterion) *Ordering {
	valid := lo.Uniq(lo.Filter(criteria, func(c Criterion, _ int) bool { return c.Valid() }))
	if len(valid) == 0 {
		valid = []Criterion{Date}
	}
	return &Ordering{criteria: valid}
}

// Add appends c as the lowest priority criterion.
// It reports whether the criteria changed.
func (o *Ordering) Add(c Criterion) bool {
	if !c.Valid() {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if slices.Contains(o.criteria, c) {
		return false
	}
	o.criteria = append(o.criteria, c)
	return true
}

// Remove drops c. It reports whether the criteria changed.
func (o *Ordering) Remove(c Criterion) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	i := slices.Index(o.criteria, c)
	if i < 0 {
		return false
	}
	o.criteria = slices.Delete(o.criteria, i, i+1)
	return true
}

// Clear removes every criterion. Comparison then falls back to Date.
func (o *Ordering) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.criteria = nil
}

// Only replaces the criteria with c alone.
func (o *Ordering) Only(c Criterion) bool {
	if !c.Valid() {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.criteria) == 1 && o.criteria[0] == c {
		return false
	}
	o.criteria = []Criterion{c}
	return true
}

// Set replaces the criteria, dropping invalid and duplicate entries.
func (o *Ordering) Set(criteria ...Criterion) {
	valid := lo.Uniq(lo.Filter(criteria, func(c Criterion, _ int) bool { return c.Valid() }))
	o.mu.Lock()
	defer o.mu.Unlock()
	o.criteria = valid
}

// Criteria returns a copy of the active criteria in application order.
func (o *Ordering) Criteria() []Criterion {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.criteria)
}

// Comparator returns a comparison function bound to a snapshot of the
// current criteria, so a whole sort runs against one consistent set.
func (o *Ordering) Comparator() func(a, b Message) int {
	criteria := o.Criteria()
	if len(criteria) == 0 {
		criteria = []Criterion{Date}
	}
	return func(a, b Message) int {
		for _, c := range criteria {
			if r := compareOn(c, a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// Compare three-way compares a and b under the active criteria.
func (o *Ordering) Compare(a, b Message) int {
	return o.Comparator()(a, b)
}

// Equivalent reports whether a and b tie on every active criterion.
// This is not structural equality: two messages with different content are
// equivalent while only Date is active and their timestamps match.
func (o *Ordering) Equivalent(a, b Message) bool {
	return o.Compare(a, b) == 0
}

func compareOn(c Criterion, a, b Message) int {
	switch c {
	case Author:
		return strings.Compare(a.author, b.author)
	case Date:
		return a.at.Compare(b.at)
	case Content:
		return strings.Compare(a.content, b.content)
	default:
		return 0
	}
}
