package rooms

import "strings"

// Filter returns the rooms whose title contains term, ignoring case and
// surrounding space. An empty term matches everything.
func Filter(list []Chatroom, term string) []Chatroom {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Chatroom, 0, len(list))
	for _, c := range list {
		if strings.Contains(strings.ToLower(c.Title), term) {
			out = append(out, c)
		}
	}
	return out
}
