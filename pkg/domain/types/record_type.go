package types

import "fmt"

// RecordType represents the kind of a memory record stored in the vector layer
type RecordType string

const (
	RecordTypeChunk   RecordType = "chunk"
	RecordTypeSummary RecordType = "summary"
)

// AllRecordTypes returns all valid record types
func AllRecordTypes() []RecordType {
	return []RecordType{
		RecordTypeChunk,
		RecordTypeSummary,
	}
}

// IsValid checks if the record type is valid
func (t RecordType) IsValid() bool {
	switch t {
	case RecordTypeChunk, RecordTypeSummary:
		return true
	default:
		return false
	}
}

// String returns the string representation of the record type
func (t RecordType) String() string {
	return string(t)
}

// ParseRecordType parses a string into a RecordType
func ParseRecordType(s string) (RecordType, error) {
	t := RecordType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid record type: %s", s)
	}
	return t, nil
}
