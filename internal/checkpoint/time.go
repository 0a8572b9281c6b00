package checkpoint

import "time"

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(timestampLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
