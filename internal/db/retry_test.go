package db

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

// mockMongoDuplicateKeyError creates an error that IsMongoDuplicateKeyError
// will recognize.
func mockMongoDuplicateKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error",
	}}}
}

func TestWithRetries_SuccessfulFirstAttempt(t *testing.T) {
	var opCalled int
	operation := func() error {
		opCalled++
		return nil
	}

	err := WithRetries(operation, 3, IsMongoDuplicateKeyError)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if opCalled != 1 {
		t.Errorf("Expected operation to be called 1 time, got %d", opCalled)
	}
}

func TestWithRetries_FailureNonDuplicateKey(t *testing.T) {
	var opCalled int
	expectedErr := errors.New("some other error")
	operation := func() error {
		opCalled++
		return expectedErr
	}

	err := WithRetries(operation, 3, IsMongoDuplicateKeyError)
	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected error %v, got %v", expectedErr, err)
	}
	if opCalled != 1 {
		t.Errorf("Expected operation to be called 1 time, got %d", opCalled)
	}
}

func TestWithRetries_ExhaustRetries(t *testing.T) {
	var opCalled int
	operation := func() error {
		opCalled++
		return mockMongoDuplicateKeyError()
	}

	err := WithRetries(operation, 3, IsMongoDuplicateKeyError)
	if err == nil {
		t.Error("Expected an error after exhausting retries, got nil")
	}
	// Initial attempt + 3 retries.
	if opCalled != 4 {
		t.Errorf("Expected operation to be called 4 times, got %d", opCalled)
	}
}

func TestWithRetries_SucceedsAfterDuplicate(t *testing.T) {
	var opCalled int
	operation := func() error {
		opCalled++
		if opCalled < 3 {
			return mockMongoDuplicateKeyError()
		}
		return nil
	}

	err := WithRetries(operation, 3, IsMongoDuplicateKeyError)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if opCalled != 3 {
		t.Errorf("Expected operation to be called 3 times, got %d", opCalled)
	}
}

func TestIsMongoDuplicateKeyError(t *testing.T) {
	if !IsMongoDuplicateKeyError(mockMongoDuplicateKeyError()) {
		t.Error("Expected duplicate key error to be recognized")
	}
	if IsMongoDuplicateKeyError(errors.New("plain error")) {
		t.Error("Expected plain error not to be recognized")
	}
	if IsMongoDuplicateKeyError(nil) {
		t.Error("Expected nil not to be recognized")
	}
}
