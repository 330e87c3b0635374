package ir

import "github.com/google/uuid"

// StreamNamespace seeds name-based stream IDs.
var StreamNamespace = uuid.MustParse("6f1c3a52-27d8-4c5e-9a0b-3d41f2b6e8c7")

// StreamSpec is a named saved search. Each entry of Queries selects
// issues on its own; a stream shows the union. Filter, when set, narrows
// every query and may carry the stream's sort.
type StreamSpec struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Queries []string `json:"queries"`
	Filter  string   `json:"filter,omitempty"`
	Color   string   `json:"color,omitempty"`
}

// StreamID derives a stable ID from a stream name. The same name always
// yields the same ID, so IDs survive reloads of the definitions file.
func StreamID(name string) string {
	return uuid.NewSHA1(StreamNamespace, []byte(name)).String()
}
