package utils

import "testing"

func TestHeaderConstants(t *testing.T) {
	if HEADER_AUTH_KEY == "" {
		t.Error("HEADER_AUTH_KEY should not be empty")
	}
	if HEADER_SOURCE_KEY == "" {
		t.Error("HEADER_SOURCE_KEY should not be empty")
	}
	if HEADER_ENVIRONMENT_KEY == "" {
		t.Error("HEADER_ENVIRONMENT_KEY should not be empty")
	}
	if HEADER_SESSION_KEY == "" {
		t.Error("HEADER_SESSION_KEY should not be empty")
	}
	if BEARER_PREFIX != "Bearer " {
		t.Errorf("unexpected bearer prefix %q", BEARER_PREFIX)
	}
}
