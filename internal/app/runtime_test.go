package app

import "testing"

func TestRefreshTestMode(t *testing.T) {
	t.Setenv(testModeEnv, "true")
	RefreshTestMode()
	if !InTestMode() {
		t.Fatalf("expected test mode with %s=true", testModeEnv)
	}
	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	if InTestMode() {
		t.Fatalf("expected test mode off with %s=0", testModeEnv)
	}
}

func TestVersionNeverEmpty(t *testing.T) {
	if Version() == "" {
		t.Fatalf("version must not be empty")
	}
}
