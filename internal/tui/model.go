// Package tui implements the interactive configuration editor started by
// --configure. It edits the config store directly and never runs a sort.
package tui

import (
	"io"

	"dirsort/internal/config"
	"dirsort/internal/tui/components"
	"dirsort/internal/tui/messages"
	"dirsort/internal/tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
)

// Saver persists an edited record.
type Saver interface {
	Update(fn func(*config.Record) error) error
}

type Model struct {
	editor *components.ConfigEditor
	store  Saver
	fs     afero.Fs
	saved  bool
	err    error
}

// New returns an editor model for rec. Saving validates the record against fs
// and, when valid, writes it to store.
func New(rec config.Record, store Saver, fs afero.Fs) *Model {
	return &Model{
		editor: components.NewConfigEditor(rec),
		store:  store,
		fs:     fs,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.editor.Init()
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ConfigUpdateMsg:
		return m, m.save(msg.Record)
	case messages.ConfigSavedMsg:
		m.saved = true
		return m, tea.Quit
	case messages.ErrorMsg:
		m.err = msg.Err
		return m, tea.Quit
	case messages.QuitMsg:
		return m, tea.Quit
	}
	return m, m.editor.Update(msg)
}

// save validates rec and writes it. An invalid record keeps the editor open
// with the issues on screen so the operator can fix them.
func (m *Model) save(rec config.Record) tea.Cmd {
	if _, err := config.Validate(m.fs, rec); err != nil {
		m.editor.ShowError(err)
		return nil
	}
	return func() tea.Msg {
		// Keep whatever lock a concurrent run recorded meanwhile.
		err := m.store.Update(func(cur *config.Record) error {
			*cur = rec.WithLock(cur.LockState())
			return nil
		})
		if err != nil {
			return messages.ErrorMsg{Err: err}
		}
		return messages.ConfigSavedMsg{}
	}
}

// View implements tea.Model
func (m *Model) View() string {
	if m.saved {
		return styles.Theme.Success.Render("Config saved. Run the sorter when you are ready!") + "\n"
	}
	return styles.Theme.App.Render(m.editor.View()) + "\n"
}

// Saved reports whether the record was written.
func (m *Model) Saved() bool {
	return m.saved
}

// Err returns the error that ended the editor, if any.
func (m *Model) Err() error {
	return m.err
}

// Editor exposes the field editor.
func (m *Model) Editor() *components.ConfigEditor {
	return m.editor
}

// Run loads the store, runs the editor on the terminal and reports whether
// the record was saved. A missing store is returned as an error and the editor
// is not started.
func Run(store *config.Store, fs afero.Fs, in io.Reader, out io.Writer) (bool, error) {
	rec, err := store.Load()
	if err != nil {
		return false, err
	}

	m := New(rec, store, fs)
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return false, err
	}
	fm := final.(*Model)
	return fm.Saved(), fm.Err()
}
