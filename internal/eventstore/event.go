package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/flatsite/internal/enginecache"
)

// Event is one persisted generation record.
type Event struct {
	ID         int64
	Type       string
	Root       string
	Generation string
	Timestamp  time.Time
	Payload    []byte
}

// GenerationPayload is the JSON body stored for generation events.
type GenerationPayload struct {
	EntryPoint string `json:"entry_point,omitempty"`
	Entries    int    `json:"entries"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Decode unmarshals the payload of a generation event.
func (e Event) Decode() (GenerationPayload, error) {
	var p GenerationPayload
	if len(e.Payload) == 0 {
		return p, nil
	}
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}

// FromGeneration converts a cache event into a storable record.
func FromGeneration(ev enginecache.Event) (Event, error) {
	p := GenerationPayload{
		EntryPoint: ev.EntryPoint,
		Entries:    ev.Entries,
		DurationMS: ev.Duration.Milliseconds(),
	}
	if ev.Err != nil {
		p.Error = ev.Err.Error()
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return Event{}, err
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	return Event{
		Type:       string(ev.Kind),
		Root:       ev.Root,
		Generation: ev.Generation,
		Timestamp:  at,
		Payload:    payload,
	}, nil
}
