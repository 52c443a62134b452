package store

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// timeLayout is fixed width and always UTC, so comparing stored values as
// text orders them chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(src any) (time.Time, error) {
	switch v := src.(type) {
	case string:
		return time.Parse(time.RFC3339Nano, v)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(v))
	case time.Time:
		return v.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T", src)
	}
}

// timestamp is a NOT NULL time column.
type timestamp struct {
	time.Time
}

func (t *timestamp) Scan(src any) error {
	if src == nil {
		return fmt.Errorf("scanning timestamp: unexpected NULL")
	}
	parsed, err := parseTime(src)
	if err != nil {
		return fmt.Errorf("scanning timestamp: %w", err)
	}
	t.Time = parsed
	return nil
}

func (t timestamp) Value() (driver.Value, error) {
	return formatTime(t.Time), nil
}

// nullTimestamp is a nullable time column.
type nullTimestamp struct {
	Time  time.Time
	Valid bool
}

func toNullTimestamp(t *time.Time) nullTimestamp {
	if t == nil {
		return nullTimestamp{}
	}
	return nullTimestamp{Time: *t, Valid: true}
}

func (n *nullTimestamp) Scan(src any) error {
	if src == nil {
		*n = nullTimestamp{}
		return nil
	}
	parsed, err := parseTime(src)
	if err != nil {
		return fmt.Errorf("scanning timestamp: %w", err)
	}
	*n = nullTimestamp{Time: parsed, Valid: true}
	return nil
}

func (n nullTimestamp) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return formatTime(n.Time), nil
}

// Ptr returns the time, or nil when the column was NULL.
func (n nullTimestamp) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}
