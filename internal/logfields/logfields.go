package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyCourse     = "course"
	KeyUID        = "uid"
	KeyParentUID  = "parent_uid"
	KeyPath       = "path"
	KeyKey        = "key"
	KeyBucket     = "bucket"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyDocuments  = "documents"
	KeyJobID      = "job_id"
	KeyScheduleID = "schedule_id"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Course(id string) slog.Attr      { return slog.String(KeyCourse, id) }
func UID(uid string) slog.Attr        { return slog.String(KeyUID, uid) }
func ParentUID(uid string) slog.Attr  { return slog.String(KeyParentUID, uid) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Key(k string) slog.Attr          { return slog.String(KeyKey, k) }
func Bucket(b string) slog.Attr       { return slog.String(KeyBucket, b) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Documents(n int) slog.Attr       { return slog.Int(KeyDocuments, n) }
func JobID(id string) slog.Attr       { return slog.String(KeyJobID, id) }
func ScheduleID(id string) slog.Attr  { return slog.String(KeyScheduleID, id) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
