// Package paging computes page slices and the dynamic, 1-based option numbering
// shared by every list the flows render.
//
// The same Menu value must be used to render a list and to decode the reply to it:
// items occupy options 1..K, "next page" follows at K+1 only when another page exists,
// and the remaining actions shift accordingly.
package paging

import (
	"strconv"
	"strings"
)

// Action names a non-item menu option.
type Action string

const (
	// ActionSelect marks options that select the n-th item of the page.
	ActionSelect Action = "select"
	// ActionNextPage advances to the following page. Only offered when one exists.
	ActionNextPage Action = "next_page"
)

// Number assigns option numbers to a page of itemCount items followed by actions.
// Items take 1..itemCount, ActionNextPage takes itemCount+1 when hasNextPage,
// then every action in the order given.
func Number(itemCount int, hasNextPage bool, actions ...Action) map[int]Action {
	if itemCount < 0 {
		itemCount = 0
	}
	options := make(map[int]Action, itemCount+len(actions)+1)
	for i := 1; i <= itemCount; i++ {
		options[i] = ActionSelect
	}
	next := itemCount + 1
	if hasNextPage {
		options[next] = ActionNextPage
		next++
	}
	for _, a := range actions {
		options[next] = a
		next++
	}
	return options
}

// Choice is a decoded reply.
type Choice struct {
	// Option is the number the customer typed.
	Option int
	// Action is what the option means. For ActionSelect, Option is the item number.
	Action Action
}

// Menu is a numbered list: a page of items plus trailing actions.
type Menu struct {
	Items   int      `json:"items"`
	HasNext bool     `json:"has_next,omitempty"`
	Actions []Action `json:"actions,omitempty"`
}

// NewMenu builds a menu for a page of items.
func NewMenu(items int, hasNext bool, actions ...Action) Menu {
	return Menu{Items: items, HasNext: hasNext, Actions: actions}
}

// ForPage builds a menu for the given page.
func ForPage(p Page, actions ...Action) Menu {
	return NewMenu(p.Count(), p.HasNext(), actions...)
}

// Options returns the option number to action mapping.
func (m Menu) Options() map[int]Action {
	return Number(m.Items, m.HasNext, m.Actions...)
}

// Max returns the highest valid option number.
func (m Menu) Max() int {
	n := m.Items + len(m.Actions)
	if m.HasNext {
		n++
	}
	return n
}

// IndexOf returns the option number assigned to a, or 0 if the menu does not offer it.
func (m Menu) IndexOf(a Action) int {
	for n, action := range m.Options() {
		if action == a && a != ActionSelect {
			return n
		}
	}
	return 0
}

// Decode interprets a reply against the menu.
// Anything that is not a whole number inside the menu is rejected.
func (m Menu) Decode(reply string) (Choice, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil {
		return Choice{}, false
	}
	action, ok := m.Options()[n]
	if !ok {
		return Choice{}, false
	}
	return Choice{Option: n, Action: action}, true
}

// Lines renders the trailing actions as "N. label" lines, in option order.
// Actions without a label are skipped from the output but keep their number.
func (m Menu) Lines(label func(Action) string) []string {
	var lines []string
	n := m.Items + 1
	render := func(a Action) {
		if text := label(a); text != "" {
			lines = append(lines, strconv.Itoa(n)+". "+text)
		}
		n++
	}
	if m.HasNext {
		render(ActionNextPage)
	}
	for _, a := range m.Actions {
		render(a)
	}
	return lines
}
