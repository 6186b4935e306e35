package logging

import "time"

// Any creates a Field holding an arbitrary value.
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// StringField creates a Field with a string value.
func StringField(key, value string) Field { return Field{Key: key, Value: value} }

// IntField creates a Field with an integer value.
func IntField(key string, value int) Field { return Field{Key: key, Value: value} }

// Int64Field creates a Field with an int64 value.
func Int64Field(key string, value int64) Field { return Field{Key: key, Value: value} }

// BoolField creates a Field with a boolean value.
func BoolField(key string, value bool) Field { return Field{Key: key, Value: value} }

// DurationField records d in whole milliseconds under key, which
// by convention ends in "_ms".
func DurationField(key string, d time.Duration) Field {
	return Field{Key: key, Value: d.Milliseconds()}
}

// ErrorField records err under "error". A nil error is logged as
// "<nil>" so the key is always present.
func ErrorField(err error) Field {
	msg := "<nil>"
	if err != nil {
		msg = err.Error()
	}
	return Field{Key: "error", Value: msg}
}
