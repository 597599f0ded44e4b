package components

import (
	"fmt"
	"strconv"
	"strings"

	"dirsort/internal/config"
	"dirsort/internal/tui/messages"
	"dirsort/internal/tui/styles"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Fields lists the editable record fields in display order.
var Fields = []string{
	"Target_Dir",
	"Sorted_Dir",
	"Sort_Type",
	"Sort_Mode",
	"Delete_Empty_Dirs",
	"Ignore_Names",
	"Ignore_Types",
}

var fieldHints = map[string]string{
	"Sort_Type":         "Options: File-Extension or Date-Created.",
	"Sort_Mode":         "Options: Move or Copy.",
	"Delete_Empty_Dirs": "Options: true/false, yes/no, or 1/0.",
	"Ignore_Names":      "Enter comma-separated values (e.g. item1, item2, item3). Leave blank to clear.",
	"Ignore_Types":      "Enter comma-separated values (e.g. item1, item2, item3). Leave blank to clear.",
}

type ConfigEditor struct {
	record    config.Record
	cursor    int
	editing   bool
	input     textinput.Model
	keys      KeyMap
	help      help.Model
	statusBar *StatusBar
}

func NewConfigEditor(rec config.Record) *ConfigEditor {
	input := textinput.New()
	input.Width = 60
	input.Prompt = "> "

	return &ConfigEditor{
		record:    rec,
		input:     input,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		statusBar: NewStatusBar(),
	}
}

// Record returns the record as edited so far.
func (ce *ConfigEditor) Record() config.Record {
	return ce.record
}

func (ce *ConfigEditor) Cursor() int {
	return ce.cursor
}

func (ce *ConfigEditor) Editing() bool {
	return ce.editing
}

// StatusText returns the message currently shown below the fields.
func (ce *ConfigEditor) StatusText() string {
	return ce.statusBar.Text()
}

// ShowError displays err, one line per validation issue.
func (ce *ConfigEditor) ShowError(err error) {
	msg := err.Error()
	msg = strings.TrimPrefix(msg, "invalid configuration: ")
	ce.statusBar.SetError("Config not saved: fix the issues below.\n  " + strings.ReplaceAll(msg, "; ", "\n  "))
}

func (ce *ConfigEditor) ShowMessage(text string) {
	ce.statusBar.SetText(text)
}

func (ce *ConfigEditor) Init() tea.Cmd {
	return nil
}

func (ce *ConfigEditor) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if ce.editing {
			var cmd tea.Cmd
			ce.input, cmd = ce.input.Update(msg)
			return cmd
		}
		return nil
	}

	if ce.editing {
		switch {
		case key.Matches(keyMsg, ce.keys.Commit):
			ce.commit(ce.input.Value())
			ce.editing = false
			ce.input.Blur()
			return nil
		case key.Matches(keyMsg, ce.keys.Cancel):
			ce.editing = false
			ce.input.Blur()
			ce.statusBar.Clear()
			return nil
		}
		var cmd tea.Cmd
		ce.input, cmd = ce.input.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(keyMsg, ce.keys.Up):
		ce.cursor--
		if ce.cursor < 0 {
			ce.cursor = len(Fields) - 1
		}
	case key.Matches(keyMsg, ce.keys.Down):
		ce.cursor++
		if ce.cursor >= len(Fields) {
			ce.cursor = 0
		}
	case key.Matches(keyMsg, ce.keys.Jump):
		n, _ := strconv.Atoi(keyMsg.String())
		ce.cursor = n - 1
		return ce.startEditing()
	case key.Matches(keyMsg, ce.keys.Edit):
		return ce.startEditing()
	case key.Matches(keyMsg, ce.keys.Save):
		return ce.Save
	case key.Matches(keyMsg, ce.keys.Quit):
		return func() tea.Msg { return messages.QuitMsg{} }
	}
	return nil
}

func (ce *ConfigEditor) startEditing() tea.Cmd {
	field := Fields[ce.cursor]
	ce.editing = true
	ce.input.SetValue(ce.value(field))
	ce.input.CursorEnd()
	ce.input.Placeholder = field
	if hint, ok := fieldHints[field]; ok {
		ce.statusBar.SetText(hint)
	} else {
		ce.statusBar.Clear()
	}
	return ce.input.Focus()
}

// commit stores raw as the new value of the field under the cursor.
func (ce *ConfigEditor) commit(raw string) {
	raw = strings.TrimSpace(raw)
	ce.statusBar.Clear()

	switch field := Fields[ce.cursor]; field {
	case "Target_Dir":
		ce.record.TargetDir = raw
	case "Sorted_Dir":
		ce.record.SortedDir = raw
	case "Sort_Type":
		ce.record.SortType = NormalizeChoice(raw)
	case "Sort_Mode":
		ce.record.SortMode = NormalizeChoice(raw)
	case "Delete_Empty_Dirs":
		v, ok := ParseBool(raw)
		if !ok {
			ce.statusBar.SetError(fmt.Sprintf("Invalid value '%s'. Setting to False.", raw))
		}
		ce.record.DeleteEmptyDirs = v
	case "Ignore_Names":
		ce.record.IgnoreNames = SplitList(raw)
	case "Ignore_Types":
		ce.record.IgnoreTypes = SplitList(raw)
	}
}

func (ce *ConfigEditor) value(field string) string {
	switch field {
	case "Target_Dir":
		return ce.record.TargetDir
	case "Sorted_Dir":
		return ce.record.SortedDir
	case "Sort_Type":
		return ce.record.SortType
	case "Sort_Mode":
		return ce.record.SortMode
	case "Delete_Empty_Dirs":
		return strconv.FormatBool(ce.record.DeleteEmptyDirs)
	case "Ignore_Names":
		return strings.Join(ce.record.IgnoreNames, ", ")
	case "Ignore_Types":
		return strings.Join(ce.record.IgnoreTypes, ", ")
	}
	return ""
}

func (ce *ConfigEditor) View() string {
	var s strings.Builder

	s.WriteString(styles.Theme.Title.Render("Interactive config editor"))
	s.WriteString("\n")
	s.WriteString(styles.Theme.Help.Render("Names without extensions, types without dots."))
	s.WriteString("\n\n")

	for i, field := range Fields {
		line := fmt.Sprintf("%d. %s: %s", i+1, field, ce.value(field))
		if i == ce.cursor {
			s.WriteString(styles.Theme.Selected.Render("> " + line))
		} else {
			s.WriteString(styles.Theme.Unselected.Render("  " + line))
		}
		s.WriteString("\n")
	}

	if ce.editing {
		s.WriteString("\nNew value for " + Fields[ce.cursor] + ":\n")
		s.WriteString(ce.input.View())
		s.WriteString("\n")
	}

	if status := ce.statusBar.View(); status != "" {
		s.WriteString("\n" + status + "\n")
	}

	bindings := ce.keys.BrowseHelp()
	if ce.editing {
		bindings = ce.keys.EditHelp()
	}
	s.WriteString("\n" + ce.help.ShortHelpView(bindings))
	return s.String()
}

// Save hands the edited record over for validation and saving.
func (ce *ConfigEditor) Save() tea.Msg {
	return messages.ConfigUpdateMsg{Record: ce.record}
}
