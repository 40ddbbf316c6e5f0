package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

// TestFitIDsDiffer tests that two fits never share an identity
func TestFitIDsDiffer(t *testing.T) {
	a, b := NewFitID(), NewFitID()
	if a == b {
		t.Fatalf("Expected distinct fit IDs, got %s twice", a)
	}
}

func TestParseSessionID(t *testing.T) {
	valid := NewSessionID()
	parsed, err := ParseSessionID(valid.String())
	if err != nil {
		t.Fatalf("Expected valid session ID to parse: %v", err)
	}
	if parsed != valid {
		t.Errorf("Expected %s, got %s", valid, parsed)
	}

	for _, bad := range []string{"", "   ", "not-a-uuid"} {
		if _, err := ParseSessionID(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestComputeSchemaHash_OrderSensitive(t *testing.T) {
	a := ComputeSchemaHash([]string{"recommend_score", "word_給与"})
	b := ComputeSchemaHash([]string{"word_給与", "recommend_score"})
	c := ComputeSchemaHash([]string{"recommend_score", "word_給与"})

	if a == b {
		t.Error("Expected reordered columns to change the schema hash")
	}
	if a != c {
		t.Error("Expected identical column lists to hash identically")
	}
	// Concatenation ambiguity: ["ab","c"] vs ["a","bc"]
	if ComputeSchemaHash([]string{"ab", "c"}) == ComputeSchemaHash([]string{"a", "bc"}) {
		t.Error("Expected column boundaries to be part of the hash")
	}
}
