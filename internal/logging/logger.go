// Package logging hides the concrete logging library behind a small
// structured Logger interface so that ingestion and categorization code can
// be tested with a capturing mock.
package logging

// Logger is the structured logger every component receives through its
// constructor.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a child logger carrying err.
	WithError(err error) Logger
	// WithField returns a child logger carrying one extra field.
	WithField(key string, value interface{}) Logger
	// WithFields returns a child logger carrying the given fields.
	WithFields(fields ...Field) Logger

	Fatal(msg string, fields ...Field)
	Fatalf(msg string, args ...interface{})
}

// Field is a key/value pair attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// OrDefault returns l, or an info-level text logger when l is nil.
func OrDefault(l Logger) Logger {
	if l == nil {
		return NewLogrusAdapter("info", "text")
	}
	return l
}
