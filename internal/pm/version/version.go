package version

// Set at build time:
//
//	go build -ldflags "-X github.com/abdul-hamid-achik/photomark/internal/pm/version.Version=v1.2.0 -X github.com/abdul-hamid-achik/photomark/internal/pm/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func Full() string {
	return Version + " (" + Commit + ", built " + Date + ")"
}

func Short() string {
	return Version
}
