package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository/query"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02 15:04:05.000000000"

var dialect = query.Dialect{
	Date: func(t time.Time) any { return encodeDate(t) },
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func encodeNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeTime(value string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("decoding timestamp %q: %w", value, err)
	}
	return t, nil
}

func decodeNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := decodeTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func encodeNullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeDate(*t)
}

func decodeDate(value string) (time.Time, error) {
	t, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("decoding date %q: %w", value, err)
	}
	return t, nil
}

func decodeNullDate(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := decodeDate(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid || value.String == "" {
		return nil
	}
	s := value.String
	return &s
}
