package main

import (
	"errors"
	"testing"
)

func TestIsAddressInUse(t *testing.T) {
	if !isAddressInUse(errors.New("listen tcp 127.0.0.1:8000: bind: address already in use")) {
		t.Error("Expected bind failure to be recognised as address in use")
	}
	if isAddressInUse(errors.New("connection refused")) {
		t.Error("Unrelated error should not be treated as address in use")
	}
	if isAddressInUse(nil) {
		t.Error("Nil error should not be treated as address in use")
	}
}
