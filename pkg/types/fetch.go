package types

// FetchEntry is one artifact to stage. DestinationPath is relative to the
// fetch working directory.
type FetchEntry struct {
	SourceURL       string
	DestinationPath string
	Description     string
}

// FetchManifest is consumed once, in order
type FetchManifest []FetchEntry

// FetchStatus is the per-entry transition reported while fetching
type FetchStatus string

const (
	FetchPending FetchStatus = "pending"
	FetchFetched FetchStatus = "fetched"
	FetchFailed  FetchStatus = "failed"
)
