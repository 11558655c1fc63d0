package version

var (
	// Version is the main version at the moment.
	// Embedded by --ldflags on build time
	// Versioning should follow the SemVer guidelines
	// https://semver.org/
	Version = "v0.1.0"

	// Commit is the git commit that the binary was built on
	Commit string

	// Branch is the git branch that the binary was built on
	Branch string

	// BuildTime is the time at which the binary was built
	BuildTime string
)
