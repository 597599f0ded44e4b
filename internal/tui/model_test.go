package tui

import (
	"testing"

	"dirsort/internal/config"
	"dirsort/internal/tui/components"
	"dirsort/internal/tui/messages"
	"dirsort/pkg/testutils"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSaver struct {
	current config.Record
	saves   int
}

func (s *memSaver) Update(fn func(*config.Record) error) error {
	rec := s.current
	if err := fn(&rec); err != nil {
		return err
	}
	s.current = rec
	s.saves++
	return nil
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

// send feeds msg to the model without running the returned command.
func send(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

// save presses "s" and feeds the resulting messages back into the model.
func save(t *testing.T, m *Model) {
	t.Helper()
	cmd := send(m, keys("s"))
	require.NotNil(t, cmd)
	for i := 0; cmd != nil && i < 2; i++ {
		switch msg := cmd().(type) {
		case messages.ConfigUpdateMsg, messages.ConfigSavedMsg, messages.ErrorMsg:
			cmd = send(m, msg)
		default:
			return
		}
	}
}

// edit selects field n (1-based), replaces its value and commits it.
func edit(t *testing.T, m *Model, n string, value string) {
	t.Helper()
	send(m, keys(n))
	require.True(t, m.Editor().Editing())
	// Clear the prefilled value
	for i := 0; i < 200; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	if value != "" {
		m.Update(keys(value))
	}
	send(m, enter)
	require.False(t, m.Editor().Editing())
}

func newFs(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	testutils.CreateDirs(t, fs, "/", "home/test/in")
	return fs
}

func TestEditorNavigation(t *testing.T) {
	m := New(config.Record{}, &memSaver{}, newFs(t))
	assert.Equal(t, 0, m.Editor().Cursor())

	send(m, keys("j"))
	send(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.Editor().Cursor())

	send(m, keys("k"))
	send(m, keys("k"))
	send(m, keys("k"))
	assert.Equal(t, len(components.Fields)-1, m.Editor().Cursor(), "wraps around")

	assert.Contains(t, m.View(), "7. Ignore_Types")
}

func TestEditorSavesValidRecord(t *testing.T) {
	fs := newFs(t)
	saver := &memSaver{current: config.Record{Lock: "/cfg/dir_sorter.lock", LockPID: "12"}}
	m := New(saver.current, saver, fs)

	edit(t, m, "1", "/home/test/in")
	edit(t, m, "2", "/home/test/out")
	edit(t, m, "3", "date created")
	edit(t, m, "4", "copy")
	edit(t, m, "5", "yes")
	edit(t, m, "6", " desktop, , thumbs ")
	edit(t, m, "7", "tmp,part")

	rec := m.Editor().Record()
	assert.Equal(t, "Date-Created", rec.SortType)
	assert.Equal(t, "Copy", rec.SortMode)
	assert.True(t, rec.DeleteEmptyDirs)
	assert.Equal(t, []string{"desktop", "thumbs"}, rec.IgnoreNames)
	assert.Equal(t, []string{"tmp", "part"}, rec.IgnoreTypes)

	save(t, m)
	assert.True(t, m.Saved())
	assert.Equal(t, 1, saver.saves)
	assert.Equal(t, "/home/test/out", saver.current.SortedDir)
	assert.Equal(t, "12", saver.current.LockPID, "lock fields are left alone")
	assert.Contains(t, m.View(), "Config saved.")
}

func TestEditorRejectsInvalidRecord(t *testing.T) {
	saver := &memSaver{}
	m := New(config.Record{}, saver, newFs(t))

	edit(t, m, "1", "/home/test/in")
	edit(t, m, "2", "/home/test/in/sorted")
	edit(t, m, "4", "shred")

	save(t, m)
	assert.False(t, m.Saved())
	assert.Equal(t, 0, saver.saves)

	status := m.Editor().StatusText()
	assert.Contains(t, status, "Config not saved")
	assert.Contains(t, status, "Sort_Type: field is missing")
	assert.Contains(t, status, "Sorted_Dir: cannot live inside Target_Dir")
	assert.Contains(t, status, "Sort_Mode: must be 'Move' or 'Copy'")

	// The editor stays open for another attempt
	edit(t, m, "2", "/home/test/out")
	edit(t, m, "3", "file extension")
	edit(t, m, "4", "move")
	save(t, m)
	assert.True(t, m.Saved())
}

func TestEditorInvalidBool(t *testing.T) {
	m := New(config.Record{DeleteEmptyDirs: true}, &memSaver{}, newFs(t))
	edit(t, m, "5", "maybe")
	assert.False(t, m.Editor().Record().DeleteEmptyDirs)
	assert.Contains(t, m.Editor().StatusText(), "Invalid value 'maybe'. Setting to False.")
}

func TestEditorEscapeCancelsEdit(t *testing.T) {
	m := New(config.Record{TargetDir: "/keep"}, &memSaver{}, newFs(t))
	send(m, keys("1"))
	m.Update(keys("xyz"))
	send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Editor().Editing())
	assert.Equal(t, "/keep", m.Editor().Record().TargetDir)
}

func TestEditorQuit(t *testing.T) {
	saver := &memSaver{}
	m := New(config.Record{}, saver, newFs(t))
	_, cmd := m.Update(keys("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, messages.QuitMsg{}, cmd())
	assert.False(t, m.Saved())
	assert.Equal(t, 0, saver.saves)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "File-Extension", components.NormalizeChoice("file extension"))
	assert.Equal(t, "Date-Created", components.NormalizeChoice("DATE-CREATED"))
	assert.Equal(t, "Move", components.NormalizeChoice("  move "))

	for _, s := range []string{"true", "YES", "1", "y"} {
		v, ok := components.ParseBool(s)
		assert.True(t, v && ok, s)
	}
	for _, s := range []string{"false", "no", "0", "N", ""} {
		v, ok := components.ParseBool(s)
		assert.True(t, !v && ok, s)
	}
	_, ok := components.ParseBool("perhaps")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, components.SplitList(" a ,, b ,"))
	assert.Empty(t, components.SplitList(""))
}
