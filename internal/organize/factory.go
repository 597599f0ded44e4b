package organize

import (
	"dirsort/internal/log"

	"github.com/spf13/afero"
)

// OrganizerFactory is a function that creates an Organizer
// This allows for dependency injection in tests
type OrganizerFactory func(fs afero.Fs, logger *log.Logger) Organizer

// Default factory that creates a real organizer
var DefaultOrganizerFactory OrganizerFactory = func(fs afero.Fs, logger *log.Logger) Organizer {
	return New(fs, logger)
}

// CurrentOrganizerFactory is the currently active factory
// This can be swapped in tests
var CurrentOrganizerFactory = DefaultOrganizerFactory

// SetOrganizerFactory sets a custom organizer factory for dependency injection
func SetOrganizerFactory(factory OrganizerFactory) {
	CurrentOrganizerFactory = factory
}

// ResetOrganizerFactory resets to the default organizer factory
func ResetOrganizerFactory() {
	CurrentOrganizerFactory = DefaultOrganizerFactory
}
