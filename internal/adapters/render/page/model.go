package page

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bnema/tgsession/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// Session is the part of the session client the page drives.
type Session interface {
	Initialize(ctx context.Context) error
	Identity() (domain.Identity, bool)
	State() domain.State
	FetchUserData(ctx context.Context) (domain.UserData, bool)
	ToggleFavorite(ctx context.Context, videoID string) bool
	UpdateReaction(ctx context.Context, action domain.ReactionAction, videoID string) bool
}

// Host is the host bridge the page forwards window and back events to.
type Host interface {
	Emit(name string)
	Back()
}

type Options struct {
	Session   Session
	Surface   *Surface
	Lifecycle *Lifecycle
	Host      Host
	VideoID   string
}

// SurfaceChangedMsg asks the program to redraw after the surface changed
// outside the update loop.
type SurfaceChangedMsg struct{}

type initializedMsg struct{ err error }

type userDataMsg struct {
	data domain.UserData
	ok   bool
}

type actionDoneMsg struct {
	label string
	ok    bool
}

type leaveMsg struct{}

type Model struct {
	ctx      context.Context
	opts     Options
	styles   styles
	spinner  spinner.Model
	userData domain.UserData
	notice   string
	ready    bool
	busy     bool
	initErr  error
}

func NewModel(ctx context.Context, opts Options) Model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return Model{
		ctx:     ctx,
		opts:    opts,
		styles:  newStyles(),
		spinner: s,
	}
}

// Err is the Initialize error, if any.
func (m Model) Err() error {
	return m.initErr
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initialize)
}

func (m Model) initialize() tea.Msg {
	return initializedMsg{err: m.opts.Session.Initialize(m.ctx)}
}

func (m Model) fetchUserData() tea.Msg {
	data, ok := m.opts.Session.FetchUserData(m.ctx)
	return userDataMsg{data: data, ok: ok}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case SurfaceChangedMsg:
		return m, nil
	case initializedMsg:
		m.initErr = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.ready = true
		m.busy = true
		return m, m.fetchUserData
	case userDataMsg:
		m.busy = false
		if msg.ok {
			m.userData = msg.data
			m.notice = "user data refreshed"
		} else {
			m.notice = "could not load user data"
		}
		return m, nil
	case actionDoneMsg:
		m.busy = false
		if msg.ok {
			m.notice = msg.label + ": done"
			m.busy = true
			return m, m.fetchUserData
		}
		m.notice = msg.label + ": failed"
		return m, nil
	case leaveMsg:
		return m, tea.Quit
	case tea.WindowSizeMsg:
		if m.opts.Host != nil {
			m.opts.Host.Emit(domain.HostEventViewportChanged)
		}
		return m, nil
	case tea.MouseMsg:
		m.notifyMouse(msg)
		return m, nil
	case tea.KeyMsg:
		m.notify(domain.InteractionKeyPress)
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, m.unload
	case "esc":
		return m, m.back
	}

	if !m.ready || m.busy {
		return m, nil
	}

	switch msg.String() {
	case "r":
		m.busy = true
		return m, m.fetchUserData
	case "f":
		return m.runAction("favorite", func(ctx context.Context, videoID string) bool {
			return m.opts.Session.ToggleFavorite(ctx, videoID)
		})
	case "l":
		return m.runAction("like", m.reaction(domain.ActionLike))
	case "d":
		return m.runAction("dislike", m.reaction(domain.ActionDislike))
	default:
		return m, nil
	}
}

func (m Model) reaction(action domain.ReactionAction) func(context.Context, string) bool {
	return func(ctx context.Context, videoID string) bool {
		return m.opts.Session.UpdateReaction(ctx, action, videoID)
	}
}

func (m Model) runAction(label string, call func(context.Context, string) bool) (tea.Model, tea.Cmd) {
	if m.opts.VideoID == "" {
		m.notice = label + ": no video selected"
		return m, nil
	}

	m.busy = true
	m.notice = label + "..."
	ctx, videoID := m.ctx, m.opts.VideoID
	return m, func() tea.Msg {
		return actionDoneMsg{label: label, ok: call(ctx, videoID)}
	}
}

func (m Model) unload() tea.Msg {
	if m.opts.Lifecycle != nil {
		m.opts.Lifecycle.FireUnload()
	}
	return leaveMsg{}
}

func (m Model) back() tea.Msg {
	if m.opts.Host != nil {
		m.opts.Host.Back()
	}
	return leaveMsg{}
}

func (m Model) notifyMouse(msg tea.MouseMsg) {
	event := tea.MouseEvent(msg)
	switch {
	case event.IsWheel():
		m.notify(domain.InteractionScroll)
	case event.Action == tea.MouseActionPress:
		m.notify(domain.InteractionPointerPress)
	}
}

func (m Model) notify(kind domain.InteractionKind) {
	if m.opts.Lifecycle != nil {
		m.opts.Lifecycle.FireInteraction(kind)
	}
}

func (m Model) View() string {
	return renderView(m.opts.Surface.Snapshot(), m.viewData(true), m.styles)
}

func (m Model) viewData(interactive bool) ViewData {
	data := ViewData{
		State:       m.opts.Session.State(),
		VideoID:     m.opts.VideoID,
		UserData:    m.userData,
		Notice:      m.notice,
		Spinner:     m.spinner.View(),
		Interactive: interactive,
	}
	if identity, ok := m.opts.Session.Identity(); ok {
		data.Identity = &identity
	}
	return data
}

// Run drives the interactive page until the user leaves it.
func Run(ctx context.Context, opts Options, programOpts ...tea.ProgramOption) error {
	programOpts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithMouseCellMotion()}, programOpts...)
	p := tea.NewProgram(NewModel(ctx, opts), programOpts...)

	if opts.Surface != nil {
		opts.Surface.OnChange(func() { go p.Send(SurfaceChangedMsg{}) })
		defer opts.Surface.OnChange(nil)
	}

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	final, ok := finalModel.(Model)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnexpectedRenderModel, finalModel)
	}
	return final.Err()
}

type staticModel struct {
	snapshot Snapshot
	data     ViewData
	styles   styles
	output   string
}

type renderReadyMsg struct{}

func (m staticModel) Init() tea.Cmd {
	return func() tea.Msg { return renderReadyMsg{} }
}

func (m staticModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(renderReadyMsg); ok {
		m.output = renderView(m.snapshot, m.data, m.styles)
		return m, tea.Quit
	}
	return m, nil
}

func (m staticModel) View() string {
	return m.output
}

// Render produces a one-shot, non-interactive rendering of the page.
func Render(snapshot Snapshot, data ViewData) (string, error) {
	data.Interactive = false
	p := tea.NewProgram(
		staticModel{snapshot: snapshot, data: data, styles: newStyles()},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(staticModel)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}
	return rendered.View(), nil
}
