package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestOptionalObjectID(t *testing.T) {
	// A component without a usage location is valid; the absent value must
	// parse as the zero ObjectID instead of failing.
	id, err := optionalObjectID("")
	if err != nil {
		t.Fatalf("Unexpected error for absent id: %v", err)
	}
	if !id.IsZero() {
		t.Error("Expected absent id to parse as the zero ObjectID")
	}

	want := bson.NewObjectID()
	id, err = optionalObjectID(want.Hex())
	if err != nil {
		t.Fatalf("Unexpected error for valid id: %v", err)
	}
	if id != want {
		t.Errorf("Expected %s, got %s", want.Hex(), id.Hex())
	}

	if _, err := optionalObjectID("not-a-hex-id"); err == nil {
		t.Error("Expected malformed id to be rejected")
	}
}
