package tui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nao1215/sitepass/internal/config"
	"github.com/nao1215/sitepass/internal/database"
	"github.com/nao1215/sitepass/internal/domain"
	"github.com/nao1215/sitepass/internal/flow"
)

// MasterStore checks and records master secret fingerprints.
// *database.Store implements it.
type MasterStore interface {
	Check(ctx context.Context, fingerprint string, storeHash bool) (database.MasterCheck, error)
	Remember(ctx context.Context, fingerprint string) error
}

// ResolverFactory builds the domain resolver for the given settings.
type ResolverFactory func(settings config.Settings) (domain.Resolver, error)

// DefaultResolverFactory builds a resolver from the settings alone, without
// a proxy.
func DefaultResolverFactory(logger *slog.Logger) ResolverFactory {
	return func(s config.Settings) (domain.Resolver, error) {
		return domain.NewResolver(s.Resolver,
			domain.WithEndpoint(s.DoHEndpoint),
			domain.WithTimeout(s.LookupTimeout),
			domain.WithLogger(logger),
		)
	}
}

// AppConfig contains the dependencies of an App.
type AppConfig struct {
	Settings config.Settings
	// Store may be nil, in which case the master secret is never checked.
	Store       MasterStore
	Clipboard   Clipboard
	NewResolver ResolverFactory
	// SaveSettings persists settings changed in the settings panel.
	SaveSettings func(config.Settings) error
	// Random drives keylogger protection. Defaults to a crypto seeded source.
	Random flow.Random
	Logger *slog.Logger
}

// settingsSavedMsg reports the result of a SaveSettings effect.
type settingsSavedMsg struct{ err error }

// rememberedMsg reports the result of a RememberMasterHash effect.
type rememberedMsg struct{ err error }

// App is the bubbletea model of the interactive UI.
type App struct {
	ctx   context.Context
	state flow.State

	input     textinput.Model
	keylogger *flow.KeyloggerProtector
	help      help.Model
	keyMap    KeyMap
	theme     *Theme

	// draft holds the settings edited while the panel is open.
	draft config.Settings
	// status is a shell level message, for failures outside the flow.
	status string

	width int

	store        MasterStore
	clipboard    Clipboard
	newResolver  ResolverFactory
	resolver     domain.Resolver
	saveSettings func(config.Settings) error
	logger       *slog.Logger
}

// NewApp creates the UI model.
func NewApp(ctx context.Context, cfg AppConfig) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	newResolver := cfg.NewResolver
	if newResolver == nil {
		newResolver = DefaultResolverFactory(logger)
	}
	clip := cfg.Clipboard
	if clip == nil {
		clip = SystemClipboard{}
	}

	a := &App{
		ctx:          ctx,
		state:        flow.New(cfg.Settings),
		keylogger:    flow.NewKeyloggerProtector(cfg.Random),
		help:         help.New(),
		keyMap:       DefaultKeyMap(),
		theme:        DefaultTheme(),
		width:        80,
		store:        cfg.Store,
		clipboard:    clip,
		newResolver:  newResolver,
		saveSettings: cfg.SaveSettings,
		logger:       logger,
	}
	a.rebuildResolver()
	a.resetInput()
	return a
}

// Run starts the UI on the terminal and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, cfg AppConfig) error {
	p := tea.NewProgram(NewApp(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// State returns the current flow state.
func (a *App) State() flow.State {
	return a.state
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.help.Width = msg.Width
		a.input.Width = max(msg.Width-lipgloss.Width(a.input.Prompt)-4, 10)
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case flow.Msg:
		return a, a.dispatch(msg)

	case settingsSavedMsg:
		if msg.err != nil {
			a.status = fmt.Sprintf("settings not saved: %v", msg.err)
			a.logger.Warn("failed to save settings", "error", msg.err)
		}
		return a, nil

	case rememberedMsg:
		if msg.err != nil {
			a.status = fmt.Sprintf("master secret not remembered: %v", msg.err)
			a.logger.Warn("failed to remember master fingerprint", "error", msg.err)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// dispatch feeds msg to the flow and turns the resulting effects into commands.
func (a *App) dispatch(msg flow.Msg) tea.Cmd {
	prevPage := a.state.Page
	prevSettings := a.state.Settings

	var effects []flow.Effect
	a.state, effects = flow.Update(a.state, msg)
	a.status = ""

	if a.state.Settings != prevSettings {
		a.applySettings(prevSettings)
	}
	if pageKind(prevPage) != pageKind(a.state.Page) {
		a.resetInput()
	}

	cmds := make([]tea.Cmd, 0, len(effects))
	for _, e := range effects {
		cmds = append(cmds, a.run(e))
	}
	return tea.Batch(cmds...)
}

// run executes one effect in a command.
func (a *App) run(e flow.Effect) tea.Cmd {
	ctx := a.ctx
	switch e := e.(type) {
	case flow.LookupMasterHash:
		store := a.store
		return func() tea.Msg {
			if store == nil {
				return flow.MasterChecked{Fingerprint: e.Fingerprint, Check: database.Unchecked}
			}
			check, err := store.Check(ctx, e.Fingerprint, e.StoreHash)
			return flow.MasterChecked{Fingerprint: e.Fingerprint, Check: check, Err: err}
		}

	case flow.RememberMasterHash:
		store := a.store
		if store == nil {
			return nil
		}
		return func() tea.Msg {
			return rememberedMsg{err: store.Remember(ctx, e.Fingerprint)}
		}

	case flow.ResolveDomain:
		resolver := a.resolver
		logger := a.logger
		return func() tea.Msg {
			res, err := resolver.Resolve(ctx, e.Host)
			if err != nil {
				logger.Debug("domain lookup failed", "host", e.Host, "error", err)
			}
			return flow.ResolutionDone{Host: e.Host, Result: res, Err: err}
		}

	case flow.CopyToClipboard:
		clip := a.clipboard
		return func() tea.Msg {
			return flow.CopyDone{Index: e.Index, Err: clip.WriteAll(e.Text)}
		}

	case flow.SaveSettings:
		save := a.saveSettings
		if save == nil {
			return nil
		}
		return func() tea.Msg {
			return settingsSavedMsg{err: save(e.Settings)}
		}
	}
	return nil
}

// applySettings reacts to settings replaced by the flow.
func (a *App) applySettings(prev config.Settings) {
	if a.state.Settings.Resolver != prev.Resolver ||
		a.state.Settings.DoHEndpoint != prev.DoHEndpoint ||
		a.state.Settings.LookupTimeout != prev.LookupTimeout {
		a.rebuildResolver()
	}
	if _, ok := a.state.Page.(flow.EnterMaster); ok {
		a.keylogger.SetEnabled(a.state.Settings.KeyloggerProtection, a.input.Value())
	}
}

func (a *App) rebuildResolver() {
	r, err := a.newResolver(a.state.Settings)
	if err != nil {
		a.logger.Warn("falling back to the syntactic resolver", "error", err)
		r = domain.SyntacticResolver{}
	}
	a.resolver = r
}

// resetInput prepares the text input for the current page.
func (a *App) resetInput() {
	in := textinput.New()
	in.Cursor.SetMode(cursor.CursorStatic)
	in.Width = max(a.width-10, 10)

	switch a.state.Page.(type) {
	case flow.EnterMaster:
		in.Prompt = "Master secret: "
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
		in.Focus()
		if a.state.Settings.KeyloggerProtection {
			a.keylogger.Enable("")
		} else {
			a.keylogger.Disable()
		}
	case flow.EnterURL:
		in.Prompt = "Site: "
		in.Placeholder = "https://example.com"
		in.Focus()
		a.keylogger.Disable()
	default:
		in.Blur()
		a.keylogger.Disable()
	}
	a.input = in
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keyMap.Quit):
		return tea.Quit
	case key.Matches(msg, a.keyMap.Help):
		a.help.ShowAll = !a.help.ShowAll
		return nil
	case key.Matches(msg, a.keyMap.Settings):
		if a.state.SettingsOpen {
			draft := a.draft
			return a.dispatch(flow.ToggleSettings{Updated: &draft})
		}
		a.draft = a.state.Settings
		return a.dispatch(flow.ToggleSettings{})
	}

	if a.state.SettingsOpen {
		return a.handleSettingsKey(msg)
	}

	switch page := a.state.Page.(type) {
	case flow.EnterMaster:
		if key.Matches(msg, a.keyMap.Submit) {
			return a.dispatch(flow.SubmitMaster{Secret: a.input.Value()})
		}
		return a.updateMasterInput(msg)

	case flow.EnterURL:
		switch {
		case key.Matches(msg, a.keyMap.Submit):
			return a.dispatch(flow.SubmitURL{URL: a.input.Value()})
		case key.Matches(msg, a.keyMap.Back):
			return a.dispatch(flow.Back{})
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return cmd

	case flow.DisplayPasswords:
		switch {
		case key.Matches(msg, a.keyMap.Back):
			return a.dispatch(flow.Back{})
		case key.Matches(msg, a.keyMap.More):
			return a.dispatch(flow.Next{})
		case key.Matches(msg, a.keyMap.Copy):
			idx := int(msg.Runes[0] - '1')
			if idx >= len(page.Visible()) {
				return nil
			}
			return a.dispatch(flow.Copy{Index: idx})
		}

	case flow.Sorry:
		if key.Matches(msg, a.keyMap.Back) || key.Matches(msg, a.keyMap.Submit) {
			return a.dispatch(flow.Back{})
		}
	}
	return nil
}

// updateMasterInput types into the master secret field. With keylogger
// protection every change goes through the protector, which discards the
// decoy keystrokes.
func (a *App) updateMasterInput(msg tea.KeyMsg) tea.Cmd {
	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	after := a.input.Value()
	if after == before || !a.keylogger.Enabled() {
		return cmd
	}
	if kept := a.keylogger.HandleInput(after); kept != after {
		a.input.SetValue(kept)
	}
	return cmd
}

func (a *App) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keyMap.Back):
		return a.dispatch(flow.ToggleSettings{})
	case key.Matches(msg, a.keyMap.ToggleStoreHash):
		a.draft.StoreHash = !a.draft.StoreHash
	case key.Matches(msg, a.keyMap.ToggleKeylogger):
		a.draft.KeyloggerProtection = !a.draft.KeyloggerProtection
	case key.Matches(msg, a.keyMap.ToggleInvalid):
		a.draft.DisallowInvalidDomains = !a.draft.DisallowInvalidDomains
	case key.Matches(msg, a.keyMap.CycleResolver):
		a.draft.Resolver = nextStrategy(a.draft.Resolver)
	}
	return nil
}

func nextStrategy(current string) string {
	strategies := domain.Strategies()
	i := slices.Index(strategies, current)
	return strategies[(i+1)%len(strategies)]
}

// pageKind identifies the page type, ignoring its fields.
func pageKind(p flow.Page) string {
	return fmt.Sprintf("%T", p)
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.theme.TitleStyle.Render("sitepass"))
	b.WriteString("\n")

	if a.state.SettingsOpen {
		b.WriteString(a.renderSettings())
	} else {
		b.WriteString(a.renderPage())
	}
	b.WriteString("\n")

	if n := a.state.Notice; n != nil {
		b.WriteString(a.noticeStyle(n.Level).Render(n.Text))
		b.WriteString("\n")
	}
	if a.status != "" {
		b.WriteString(a.theme.DangerStyle.Render(a.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.help.View(a.keyMap))
	return b.String()
}

func (a *App) renderPage() string {
	var b strings.Builder
	switch p := a.state.Page.(type) {
	case flow.EnterMaster:
		b.WriteString(a.input.View())
		b.WriteString("\n")
		if prompt := a.keylogger.Prompt(); prompt != "" {
			style := a.theme.SuccessStyle
			if a.keylogger.Decoy() {
				style = a.theme.WarningStyle
			}
			b.WriteString(style.Render(prompt))
			b.WriteString("\n")
		}

	case flow.EnterURL:
		b.WriteString(a.renderMasterCheck(p))
		b.WriteString("\n")
		b.WriteString(a.input.View())
		b.WriteString("\n")

	case flow.DisplayPasswords:
		b.WriteString(a.renderPasswords(p))

	case flow.Sorry:
		b.WriteString(a.theme.DangerStyle.Render("Sorry"))
		b.WriteString("\n")
		b.WriteString(p.Reason)
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderMasterCheck(p flow.EnterURL) string {
	if p.CheckPending {
		return a.theme.MutedStyle.Render("checking master secret...")
	}
	switch p.Check {
	case database.Checked:
		return a.theme.SuccessStyle.Render("✓ master secret used before")
	case database.Missing:
		return a.theme.DangerStyle.Render("! this master secret was never used before, check it for typos")
	default:
		return a.theme.MutedStyle.Render("master secret not checked")
	}
}

func (a *App) renderPasswords(p flow.DisplayPasswords) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Site:   %s\n", p.Host)

	res := p.Resolution
	status := res.Status.String()
	style := a.theme.MutedStyle
	switch res.Status {
	case domain.StatusChecked:
		style = a.theme.SuccessStyle
	case domain.StatusUncheckable:
		style = a.theme.WarningStyle
	}
	fmt.Fprintf(&b, "Domain: %s %s\n", res.Domain, style.Render("("+status+")"))
	if res.Reason != "" {
		b.WriteString(a.theme.WarningStyle.Render("        " + res.Reason))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	lines := make([]string, 0, len(p.Passwords))
	for i, pw := range p.Visible() {
		label := fmt.Sprintf("[%d] %-14s", i+1, pw.Variant.Name)
		if i > p.Accessible {
			lines = append(lines, a.theme.LockedStyle.Render(label+" copy the previous password first"))
			continue
		}
		lines = append(lines, label+" "+a.theme.PasswordStyle.Render(pw.Value))
	}
	b.WriteString(a.theme.PanelStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	if !p.ShowMore && len(p.Passwords) > 1 {
		b.WriteString(a.theme.MutedStyle.Render("m: more passwords for sites with password rules"))
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderSettings() string {
	onOff := func(v bool) string {
		if v {
			return a.theme.SuccessStyle.Render("on")
		}
		return a.theme.MutedStyle.Render("off")
	}
	lines := []string{
		"Settings",
		"",
		fmt.Sprintf("[s] remember master fingerprints  %s", onOff(a.draft.StoreHash)),
		fmt.Sprintf("[k] keylogger protection          %s", onOff(a.draft.KeyloggerProtection)),
		fmt.Sprintf("[i] refuse invalid domains        %s", onOff(a.draft.DisallowInvalidDomains)),
		fmt.Sprintf("[r] domain resolver               %s", a.draft.Resolver),
		"",
		a.theme.MutedStyle.Render("f2: save and close   esc: discard"),
	}
	return a.theme.PanelStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) noticeStyle(l flow.Level) lipgloss.Style {
	switch l {
	case flow.LevelWarning:
		return a.theme.WarningStyle
	case flow.LevelError:
		return a.theme.DangerStyle
	default:
		return a.theme.SuccessStyle
	}
}
