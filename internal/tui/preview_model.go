package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/engine"
)

// PreviewState represents the current state of the live preview.
type PreviewState int

const (
	// PreviewStateBrowsing indicates the user is moving between fields.
	PreviewStateBrowsing PreviewState = iota
	// PreviewStateEditing indicates a field is being edited.
	PreviewStateEditing
	// PreviewStateQuitting indicates the application is exiting.
	PreviewStateQuitting
)

// FieldRow is one editable activity field.
type FieldRow struct {
	Key   string
	Label string
	Value string
}

// PreviewFunc computes one preview. engine.(*Engine).Preview satisfies it.
type PreviewFunc func(ctx context.Context, input emission.ActivityInput) (emission.EmissionResult, error)

// BuildFunc turns field values keyed by FieldRow.Key into an activity input.
type BuildFunc func(values map[string]string) (emission.ActivityInput, error)

// previewResultMsg is sent when a preview completes.
type previewResultMsg struct {
	seq    uint64
	result emission.EmissionResult
	err    error
}

// Default dimensions for the preview model.
const (
	previewDefaultWidth  = 80
	previewDefaultHeight = 24
)

// PreviewModel is the Bubble Tea model for the live emission preview. Every
// change to a field triggers a new preview; only the most recently issued one
// is ever displayed.
type PreviewModel struct {
	ctx context.Context

	fields     []FieldRow
	focusedRow int
	input      textinput.Model
	before     string

	seq       engine.Sequencer
	result    *emission.EmissionResult
	err       error
	loading   bool
	previewFn PreviewFunc
	buildFn   BuildFunc

	state  PreviewState
	width  int
	height int
}

// NewPreviewModel creates a live preview over fields.
func NewPreviewModel(ctx context.Context, fields []FieldRow, build BuildFunc, preview PreviewFunc) *PreviewModel {
	ti := textinput.New()
	ti.Prompt = ""
	return &PreviewModel{
		ctx:       ctx,
		fields:    fields,
		input:     ti,
		previewFn: preview,
		buildFn:   build,
		state:     PreviewStateBrowsing,
		width:     previewDefaultWidth,
		height:    previewDefaultHeight,
	}
}

// Init previews the initial field values.
func (m *PreviewModel) Init() tea.Cmd {
	return m.triggerPreview()
}

// Update handles messages and updates the model state.
func (m *PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case previewResultMsg:
		m.handlePreviewResult(msg)
		return m, nil

	case tea.KeyMsg:
		if m.state == PreviewStateEditing {
			return m.handleEditKey(msg)
		}
		return m.handleBrowseKey(msg)
	}
	return m, nil
}

//nolint:exhaustive // Only navigation keys are handled.
func (m *PreviewModel) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.state = PreviewStateQuitting
		return m, tea.Quit

	case tea.KeyRunes:
		if string(msg.Runes) == "q" {
			m.state = PreviewStateQuitting
			return m, tea.Quit
		}

	case tea.KeyUp:
		if m.focusedRow > 0 {
			m.focusedRow--
		}

	case tea.KeyDown, tea.KeyTab:
		if m.focusedRow < len(m.fields)-1 {
			m.focusedRow++
		}

	case tea.KeyEnter:
		if m.focusedRow < len(m.fields) {
			m.before = m.fields[m.focusedRow].Value
			m.input.SetValue(m.before)
			m.input.CursorEnd()
			m.state = PreviewStateEditing
			return m, m.input.Focus()
		}
	}
	return m, nil
}

//nolint:exhaustive // Remaining keys go to the text input.
func (m *PreviewModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.state = PreviewStateQuitting
		return m, tea.Quit

	case tea.KeyEnter:
		m.input.Blur()
		m.state = PreviewStateBrowsing
		return m, nil

	case tea.KeyEsc:
		m.input.Blur()
		m.state = PreviewStateBrowsing
		if m.fields[m.focusedRow].Value == m.before {
			return m, nil
		}
		m.fields[m.focusedRow].Value = m.before
		return m, m.triggerPreview()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.fields[m.focusedRow].Value {
		m.fields[m.focusedRow].Value = v
		return m, tea.Batch(cmd, m.triggerPreview())
	}
	return m, cmd
}

// triggerPreview issues a new sequence number for the current field values.
// Values that do not form a valid input are reported without calling the
// engine, but still supersede any preview in flight.
func (m *PreviewModel) triggerPreview() tea.Cmd {
	input, err := m.buildFn(m.Values())
	if err != nil {
		m.seq.Next()
		m.loading = false
		m.err = err
		return nil
	}

	m.loading = true
	n := m.seq.Next()
	ctx, previewFn := m.ctx, m.previewFn
	return func() tea.Msg {
		result, err := previewFn(ctx, input)
		return previewResultMsg{seq: n, result: result, err: err}
	}
}

func (m *PreviewModel) handlePreviewResult(msg previewResultMsg) {
	if !m.seq.IsLatest(msg.seq) {
		return
	}
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		m.result = nil
		return
	}
	m.err = nil
	result := msg.result
	m.result = &result
}

// Values returns the current field values keyed by FieldRow.Key.
func (m *PreviewModel) Values() map[string]string {
	values := make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		values[f.Key] = f.Value
	}
	return values
}

// Result returns the latest displayed preview, or nil.
func (m *PreviewModel) Result() *emission.EmissionResult {
	return m.result
}

// Err returns the error of the latest preview, if any.
func (m *PreviewModel) Err() error {
	return m.err
}
