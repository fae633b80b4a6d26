package models

import "time"

// Record is implemented by every persisted entity.
type Record interface {
	// RecordID returns the generated identifier.
	RecordID() string
	// OwnerID returns the student the record belongs to, empty when none.
	OwnerID() string
}

// Patch is a shallow-merge update. A nil value clears the field.
type Patch map[string]interface{}

// Has reports whether the patch sets or clears key.
func (p Patch) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the string value stored under key.
func (p Patch) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Millis converts t into the unix-millisecond timestamps stored on records.
func Millis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// DateOnly formats t the way due/completed dates are stored.
func DateOnly(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
