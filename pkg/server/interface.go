/*
Package server implements msgpack IPC for phrase completion.

The server reads a stream of msgpack messages from stdin and answers each one
on stdout. Messages are processed sequentially, with timing info included in
completion responses. Logs never go to stdout.

# IPC

On start the server writes a single ready message:

	{"status": "ready"}

Completion requests carry an id, a prefix and an optional limit:

	{"id": "req_001", "p": "ame", "l": 24}

The server responds with suggestions ranked by frequency. When the prefix
matches fewer phrases than requested the results come from edit-distance
matching instead and fz is set:

	{"id": "req_001", "s": [{"w": "amenity", "f": 812, "r": 1}, {"w": "america", "f": 640, "r": 2}], "c": 2, "fz": false, "t": 145}

Other actions share the same request shape:

	{"id": "q1", "action": "lookup", "phrase": "ice cream"}
	{"id": "q2", "action": "stats"}
	{"id": "q3", "action": "health"}

Failures are reported per request and never end the loop:

	{"id": "req_002", "e": "prefix exceeds 60 characters", "c": 400}

The TOML config is reloaded every reload_every requests, so limits and
filtering can change without a restart.
*/
package server

// Request is the envelope for every client message.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action,omitempty"` // "", "complete", "lookup", "stats", "health"
	Prefix string `msgpack:"p,omitempty"`
	Limit  int    `msgpack:"l,omitempty"`
	Phrase string `msgpack:"phrase,omitempty"` // for "lookup"
}

// CompletionSuggestion - minimal suggestion response
type CompletionSuggestion struct {
	Word      string `msgpack:"w"`
	Frequency int    `msgpack:"f"`
	Rank      uint16 `msgpack:"r"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	Fuzzy       bool                   `msgpack:"fz"`
	TimeTaken   int64                  `msgpack:"t"` // microseconds
}

// LookupResponse reports the frequency of an exact phrase.
type LookupResponse struct {
	ID        string `msgpack:"id"`
	Status    string `msgpack:"status"`
	Found     bool   `msgpack:"found"`
	Frequency int    `msgpack:"f,omitempty"`
}

// StatsResponse carries corpus statistics.
type StatsResponse struct {
	ID     string         `msgpack:"id"`
	Status string         `msgpack:"status"`
	Stats  map[string]int `msgpack:"stats"`
}

// StatusResponse is used for ready and health messages.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// CompletionError holds basic error information for a failed request
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
