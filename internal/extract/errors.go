// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPathTraversal is returned when an archive entry would resolve outside
// the extraction directory. It is never suppressed: an unsafe archive aborts
// the whole unpack before any file is written.
var ErrPathTraversal = errors.New("archive entry escapes extraction directory")

// ServiceError is a non-success HTTP response from the extraction service.
// Fatal for the call that received it.
type ServiceError struct {
	// Endpoint is the URL that was called.
	Endpoint string

	// Status is the HTTP status code.
	Status int

	// Snippet is the response body, truncated to snippetLimit bytes.
	Snippet string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("extraction service %s returned HTTP %d: %s", e.Endpoint, e.Status, e.Snippet)
}

// MalformedResponseError is a success response whose payload is not a valid
// archive. The raw payload has already been persisted for offline inspection.
type MalformedResponseError struct {
	// SavedTo is the path of the persisted raw payload.
	SavedTo string

	// Snippet is the head of the payload, decoded leniently.
	Snippet string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("extraction service returned non-zip payload (saved to %s): %s", e.SavedTo, e.Snippet)
}

// ConfigurationError reports an unresolvable setup problem, such as
// ambiguous layout backfill candidates. Fatal; never guessed around.
type ConfigurationError struct {
	Reason     string
	Candidates []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Candidates) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s; candidates:\n%s", e.Reason, strings.Join(e.Candidates, "\n"))
}

// MissingArtifactError reports that a normalized result directory lacks a
// required artifact. The listing is capped to listingLimit entries.
type MissingArtifactError struct {
	Artifact string
	Dir      string
	Listing  []string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("no %s found under %s; extracted entries:\n%s",
		e.Artifact, e.Dir, strings.Join(e.Listing, "\n"))
}
