package domain

import "errors"

// ErrInvalidArtifactKind is returned when an artifact kind string is unknown.
var ErrInvalidArtifactKind = errors.New("invalid artifact kind")

// ArtifactKind names a downloadable byproduct of a diagnosis.
type ArtifactKind string

const (
	ArtifactReport    ArtifactKind = "report"
	ArtifactFixScript ArtifactKind = "fix_script"
)

// Artifact is a report or fix-script payload fetched on demand, never cached.
type Artifact struct {
	Kind      ArtifactKind `json:"kind"`
	Filename  string       `json:"filename"`
	MediaType string       `json:"mediaType"`
	Data      []byte       `json:"data"`
}

// ServiceStatus describes the reachability of one half of the deployment.
type ServiceStatus struct {
	Status string `json:"status"`
	URL    string `json:"url"`
}

// QuickStatus is the informational frontend/backend reachability panel.
type QuickStatus struct {
	Frontend      ServiceStatus `json:"frontend"`
	Backend       ServiceStatus `json:"backend"`
	OverallStatus string        `json:"overall_status"`
}
