package version

// Version is the coursebuilder release, set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/coursebuilder/internal/version.Version=v1.0.0".
var Version = "dev"

// Build metadata, also set via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return "coursebuilder " + Version + " (commit " + GitCommit + ", built " + BuildTime + ")"
}
