package branding

import "testing"

func TestAppName(t *testing.T) {
	if AppName == "" {
		t.Fatal("expected AppName to be non-empty")
	}
	if AppName != "DB Timetables" {
		t.Fatalf("AppName = %q, want %q", AppName, "DB Timetables")
	}
	if Version == "" {
		t.Fatal("expected Version to be non-empty")
	}
}
