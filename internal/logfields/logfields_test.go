package logfields

import (
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Course", KeyCourse, "18-01", Course("18-01")},
		{"UID", KeyUID, "abc", UID("abc")},
		{"ParentUID", KeyParentUID, "def", ParentUID("def")},
		{"Path", KeyPath, "sections/labs", Path("sections/labs")},
		{"Key", KeyKey, "18-01/a.pdf", Key("18-01/a.pdf")},
		{"Bucket", KeyBucket, "b", Bucket("b")},
		{"Stage", KeyStage, "resolve", Stage("resolve")},
		{"JobID", KeyJobID, "sync-1", JobID("sync-1")},
		{"ScheduleID", KeyScheduleID, "s1", ScheduleID("s1")},
		{"URL", KeyURL, "nats://x", URL("nats://x")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if v := Documents(7); v.Key != KeyDocuments || v.Value.Int64() != 7 {
		t.Fatalf("Documents mismatch: %v", v)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
