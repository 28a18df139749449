package dispatcher

import "time"

// Event is one decoded OSC message.
type Event struct {
	Address   string
	Args      []any
	Timestamp time.Time
}

// Float returns argument i as a number. Avatar parameters arrive as float,
// int or bool depending on their type in the avatar, so all three map onto
// the same scale with bools as 0 and 1.
func (e Event) Float(i int) (float64, bool) {
	if i < 0 || i >= len(e.Args) {
		return 0, false
	}
	switch v := e.Args[i].(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
