package messages

import (
	"dirsort/internal/config"
)

// ErrorMsg reports a failure the editor cannot recover from.
type ErrorMsg struct {
	Err error
}

// ConfigUpdateMsg asks for the edited record to be validated and saved.
type ConfigUpdateMsg struct {
	Record config.Record
}

// ConfigSavedMsg reports that the record was written to the store.
type ConfigSavedMsg struct{}

// QuitMsg closes the editor without saving.
type QuitMsg struct{}
