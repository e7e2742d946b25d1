package accesslog

import (
	"strconv"
	"time"

	"github.com/frahmantamala/access-bridge/internal/terminal"
)

// Direction of a recorded access event.
type Direction int

const (
	DirectionUnknown Direction = 0
	DirectionIn      Direction = 1
	DirectionOut     Direction = 2
)

// Entry is one normalized access event pulled from a terminal.
type Entry struct {
	ID           string    `json:"id"`
	CardID       string    `json:"card_id"`
	OccurredAt   time.Time `json:"occurred_at"` // second precision
	TerminalID   string    `json:"terminal_id"`
	TerminalAddr string    `json:"terminal_addr"`
	DoorID       string    `json:"door_id"`
	TermDoor     string    `json:"term_door"`
	Direction    Direction `json:"direction"`
	VerifyMethod int       `json:"verify_method"`
	VerifyStatus int       `json:"verify_status"`
	UserID       string    `json:"user_id"`
}

// DedupKey is the natural key that suppresses duplicate inserts. Devices do
// not supply a record id that is stable across syncs, so the triple is the
// only identity usable for idempotent replay.
func (e *Entry) DedupKey() (terminalID string, occurredAt time.Time, cardID string) {
	return e.TerminalID, e.OccurredAt, e.CardID
}

// FromRecord normalizes one raw device record into an Entry. Per-field parse
// failures default rather than discarding the record: a non-numeric verify
// code becomes 0, an unknown type tag becomes DirectionUnknown, and a
// missing creation time falls back to now.
func FromRecord(term *terminal.Terminal, fields map[string]string, now time.Time) *Entry {
	occurredAt := now.Truncate(time.Second)
	if raw, ok := fields["CreateTime"]; ok && raw != "" {
		if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
			occurredAt = time.Unix(sec, 0)
		}
	}

	doorID := fields["Door"]

	return &Entry{
		CardID:       fields["CardNo"],
		OccurredAt:   occurredAt,
		TerminalID:   term.TerminalID,
		TerminalAddr: term.Address,
		DoorID:       doorID,
		TermDoor:     term.TerminalID + ":" + doorID,
		Direction:    directionFromType(fields["Type"]),
		VerifyMethod: intOrZero(fields["Method"]),
		VerifyStatus: intOrZero(fields["Status"]),
		UserID:       fields["UserID"],
	}
}

// directionFromType maps the device's type tag. The match is case-sensitive;
// real devices emit exactly "Entry" and "Exit", anything else is unknown.
func directionFromType(tag string) Direction {
	switch tag {
	case "Entry":
		return DirectionIn
	case "Exit":
		return DirectionOut
	default:
		return DirectionUnknown
	}
}

func intOrZero(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
