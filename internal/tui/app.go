package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/lernbruecke/internal/auth"
	"github.com/lotas/lernbruecke/internal/bridge"
	"github.com/lotas/lernbruecke/internal/courses"
	"github.com/lotas/lernbruecke/internal/orgs"
	"github.com/lotas/lernbruecke/internal/preview"
	"github.com/lotas/lernbruecke/internal/store"
	"github.com/lotas/lernbruecke/internal/surface"
	"github.com/lotas/lernbruecke/internal/types"
)

// Screen selects the active full-screen view.
type Screen int

const (
	ScreenAuth Screen = iota
	ScreenBrowser
	ScreenCourses
	ScreenCourseDetail
)

// --- Messages ---

type surfaceEventMsg struct {
	ev surface.Event
}

type surfaceStoppedMsg struct {
	err error
}

type noticeMsg struct {
	n bridge.Notice
}

type busClosedMsg struct{}

type authDoneMsg struct {
	session *types.Session
	err     error
}

type orgsLoadedMsg struct {
	organizations []types.Organization
	err           error
}

type coursesLoadedMsg struct {
	gen  int
	list []types.Course
	err  error
}

type courseDetailMsg struct {
	gen    int
	detail *types.CourseDetail
	err    error
}

type enrollDoneMsg struct {
	gen int
	err error
}

type previewMsg struct {
	gen  int
	page *preview.Page
	err  error
}

// --- Model ---

type Model struct {
	store   store.Session
	gateway *auth.Gateway
	orgsCli *orgs.Client
	courses *courses.Client
	bridge  *bridge.Bridge
	server  *surface.Server
	notices <-chan bridge.Notice

	screen Screen
	form   AuthForm

	sw         *orgs.Switch
	picker     OrgPicker
	showPicker bool
	orgLabels  map[string]string

	coursesView CoursesView
	detailView  CourseDetailView
	coursesGen  int
	detailGen   int

	currentURL string
	currentOrg string
	page       *preview.Page
	previewGen int

	connected bool
	status    string
	spin      spinner.Model
	width     int
	height    int
}

// NewModel wires the screens around an already-constructed bridge. The
// surface server is started from Init, not here.
func NewModel(s store.Session, gw *auth.Gateway, br *bridge.Bridge, srv *surface.Server, bus *bridge.Bus) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	orgsCli := orgs.NewClient(s)
	orgsCli.BaseURL = gw.BaseURL
	coursesCli := courses.NewClient(s)
	coursesCli.BaseURL = gw.BaseURL

	m := Model{
		store:     s,
		gateway:   gw,
		orgsCli:   orgsCli,
		courses:   coursesCli,
		bridge:    br,
		server:    srv,
		notices:   bus.Subscribe(),
		form:      NewAuthForm(),
		sw:        &orgs.Switch{},
		orgLabels: make(map[string]string),
		spin:      sp,
	}
	if id, ok := s.OrganizationID(); ok {
		m.currentOrg = id
	}
	if url, ok := s.LastURL(); ok {
		m.currentURL = url
	}
	if gw.IsAuthenticated() {
		m.screen = ScreenBrowser
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		startSurface(m.server),
		listenSurface(m.server),
		listenBus(m.notices),
	)
}

// --- Commands ---

func startSurface(srv *surface.Server) tea.Cmd {
	return func() tea.Msg {
		err := srv.ListenAndServe(context.Background())
		return surfaceStoppedMsg{err: err}
	}
}

func listenSurface(srv *surface.Server) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-srv.Events()
		if !ok {
			return surfaceStoppedMsg{}
		}
		return surfaceEventMsg{ev: ev}
	}
}

func listenBus(ch <-chan bridge.Notice) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return busClosedMsg{}
		}
		return noticeMsg{n: n}
	}
}

func doLogin(gw *auth.Gateway, usernameOrEmail, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := gw.Login(context.Background(), usernameOrEmail, password)
		return authDoneMsg{session: sess, err: err}
	}
}

func doSignup(gw *auth.Gateway, first, last, username, email, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := gw.Signup(context.Background(), first, last, username, email, password)
		return authDoneMsg{session: sess, err: err}
	}
}

func loadOrgs(cli *orgs.Client) tea.Cmd {
	return func() tea.Msg {
		list, err := cli.List(context.Background())
		return orgsLoadedMsg{organizations: list, err: err}
	}
}

func loadCourses(cli *courses.Client, gen int) tea.Cmd {
	return func() tea.Msg {
		list, err := cli.List(context.Background())
		return coursesLoadedMsg{gen: gen, list: list, err: err}
	}
}

func loadCourseDetail(cli *courses.Client, slug string, gen int) tea.Cmd {
	return func() tea.Msg {
		d, err := cli.Detail(context.Background(), slug)
		return courseDetailMsg{gen: gen, detail: d, err: err}
	}
}

func doEnroll(cli *courses.Client, courseID string, gen int) tea.Cmd {
	return func() tea.Msg {
		_, err := cli.Enroll(context.Background(), courseID)
		return enrollDoneMsg{gen: gen, err: err}
	}
}

func loadPreview(s store.Session, url string, gen int) tea.Cmd {
	return func() tea.Msg {
		page, err := preview.Fetch(context.Background(), s, url)
		return previewMsg{gen: gen, page: page, err: err}
	}
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.form.Width = msg.Width
		m.form.Height = msg.Height
		m.picker.Width = msg.Width
		m.picker.Height = msg.Height
		m.coursesView.Width = msg.Width
		m.coursesView.Height = msg.Height
		m.detailView.Width = msg.Width
		m.detailView.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case surfaceEventMsg:
		m.bridge.HandleEvent(msg.ev)
		m.connected = true
		return m, listenSurface(m.server)

	case surfaceStoppedMsg:
		m.connected = false
		return m, nil

	case busClosedMsg:
		return m, nil

	case noticeMsg:
		return m.handleNotice(msg.n)

	case authDoneMsg:
		m.form.Pending = false
		if msg.err != nil {
			m.form.ErrMsg = authErrorText(msg.err)
			return m, nil
		}
		m.form = NewAuthForm()
		m.screen = ScreenBrowser
		m.status = "Signed in as " + msg.session.User.DisplayName()
		if id, ok := m.store.OrganizationID(); ok {
			m.currentOrg = id
		}
		if url, ok := m.store.LastURL(); ok {
			m.currentURL = url
		}
		m.bridge.Remount()
		return m, nil

	case orgsLoadedMsg:
		m.sw.Resolve(msg.organizations, msg.err)
		for _, o := range msg.organizations {
			m.orgLabels[o.ID] = o.Label()
		}
		return m, nil

	case coursesLoadedMsg:
		if msg.gen != m.coursesGen {
			return m, nil
		}
		m.coursesView.Loading = false
		m.coursesView.Err = msg.err
		m.coursesView.Courses = msg.list
		if m.coursesView.Cursor >= len(msg.list) {
			m.coursesView.Cursor = 0
		}
		return m, nil

	case courseDetailMsg:
		if msg.gen != m.detailGen {
			return m, nil
		}
		m.detailView.Loading = false
		m.detailView.Err = msg.err
		m.detailView.Detail = msg.detail
		return m, nil

	case enrollDoneMsg:
		if msg.gen != m.detailGen {
			return m, nil
		}
		m.detailView.Enrolling = false
		if msg.err != nil {
			m.detailView.Notice = "Enrollment failed: " + msg.err.Error()
			return m, nil
		}
		m.detailView.Notice = "Enrolled."
		if m.detailView.Detail != nil {
			// Re-fetch for the fresh enrollment state.
			m.detailView.Loading = true
			return m, loadCourseDetail(m.courses, m.detailView.Detail.Slug, m.detailGen)
		}
		return m, nil

	case previewMsg:
		if msg.gen != m.previewGen {
			return m, nil
		}
		if msg.err == nil {
			m.page = msg.page
		}
		return m, nil
	}

	if m.screen == ScreenAuth {
		return m, m.form.UpdateInputs(msg)
	}
	return m, nil
}

func (m Model) handleNotice(n bridge.Notice) (tea.Model, tea.Cmd) {
	rearm := listenBus(m.notices)
	switch n.Kind {

	case bridge.Navigated:
		if n.URL == "" {
			return m, rearm
		}
		m.currentURL = n.URL
		m.previewGen++
		return m, tea.Batch(rearm, loadPreview(m.store, n.URL, m.previewGen))

	case bridge.OrganizationChanged:
		m.currentOrg = n.OrganizationID
		m.status = "Organization changed"
		// A course list from the previous organization is stale.
		if m.screen == ScreenCourses {
			m.coursesGen++
			m.coursesView.Loading = true
			return m, tea.Batch(rearm, loadCourses(m.courses, m.coursesGen))
		}
		return m, rearm

	case bridge.SessionEstablished:
		m.status = "Signed in as " + n.User.DisplayName()
		if m.screen == ScreenAuth {
			m.form = NewAuthForm()
			m.screen = ScreenBrowser
		}
		return m, rearm
	}
	return m, rearm
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Picker overlay eats keys before the screen below.
	if m.showPicker {
		switch msg.String() {
		case "up", "k":
			m.picker.MoveUp()
		case "down", "j":
			m.picker.MoveDown()
		case "enter":
			if org, ok := m.sw.Select(m.picker.Cursor); ok {
				m.showPicker = false
				m.currentOrg = org.ID
				m.bridge.SelectOrganization(org.ID)
			}
		case "esc":
			m.sw.Close()
			m.showPicker = false
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch m.screen {

	case ScreenAuth:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+s":
			m.form.ToggleMode()
			return m, nil
		case "tab", "down":
			m.form.Next()
			return m, nil
		case "shift+tab", "up":
			m.form.Prev()
			return m, nil
		case "enter":
			if !m.form.CanSubmit() {
				return m, nil
			}
			m.form.Pending = true
			m.form.ErrMsg = ""
			if m.form.SignupMode {
				return m, doSignup(m.gateway,
					m.form.Value(signupFirst),
					m.form.Value(signupLast),
					m.form.Value(signupUsername),
					m.form.Value(signupEmail),
					m.form.Value(signupPassword),
				)
			}
			return m, doLogin(m.gateway,
				m.form.Value(loginUser),
				m.form.Value(loginPassword),
			)
		}
		return m, m.form.UpdateInputs(msg)

	case ScreenBrowser:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "o":
			if m.sw.Open() {
				m.picker = NewOrgPicker(m.sw, m.currentOrg)
				m.picker.Width = m.width
				m.picker.Height = m.height
				m.showPicker = true
				return m, loadOrgs(m.orgsCli)
			}
		case "c":
			m.screen = ScreenCourses
			m.coursesGen++
			m.coursesView = CoursesView{Loading: true, Width: m.width, Height: m.height}
			return m, loadCourses(m.courses, m.coursesGen)
		case "b":
			m.bridge.Back()
		case "h":
			m.bridge.Home()
		case "r":
			m.bridge.Refresh()
		case "e":
			m.bridge.GoTo(bridge.DestExplore)
		case "s":
			m.bridge.GoTo(bridge.DestProfileSettings)
		case "x":
			m.gateway.Logout()
			m.screen = ScreenAuth
			m.form = NewAuthForm()
			m.currentURL = ""
			m.currentOrg = ""
			m.page = nil
			m.status = "Signed out"
		}
		return m, nil

	case ScreenCourses:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.screen = ScreenBrowser
		case "up", "k":
			m.coursesView.MoveUp()
		case "down", "j":
			m.coursesView.MoveDown()
		case "r":
			m.coursesGen++
			m.coursesView.Loading = true
			m.coursesView.Err = nil
			return m, loadCourses(m.courses, m.coursesGen)
		case "enter":
			if c := m.coursesView.Selected(); c != nil {
				m.screen = ScreenCourseDetail
				m.detailGen++
				m.detailView = CourseDetailView{Loading: true, Width: m.width, Height: m.height}
				return m, loadCourseDetail(m.courses, c.Slug, m.detailGen)
			}
		}
		return m, nil

	case ScreenCourseDetail:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.screen = ScreenCourses
		case "e":
			d := m.detailView.Detail
			if d != nil && !d.IsEnrolled && !m.detailView.Enrolling {
				m.detailView.Enrolling = true
				m.detailView.Notice = ""
				return m, doEnroll(m.courses, d.ID, m.detailGen)
			}
		}
		return m, nil
	}
	return m, nil
}

func authErrorText(err error) string {
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return "Invalid username or password."
	}
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

// --- View ---

func (m Model) View() string {
	if m.showPicker {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.picker.View(m.spin.View()))
	}

	switch m.screen {
	case ScreenAuth:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.form.View(m.spin.View()))
	case ScreenCourses:
		return m.coursesView.View(m.spin.View())
	case ScreenCourseDetail:
		return m.detailView.View(m.spin.View())
	}
	return m.browserView()
}

func (m Model) orgLabel() string {
	if m.currentOrg == "" {
		return "default"
	}
	if label, ok := m.orgLabels[m.currentOrg]; ok {
		return label
	}
	return m.currentOrg
}

func (m Model) browserView() string {
	topBarStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)

	var conn string
	if m.connected {
		conn = "Surface ● connected"
	} else {
		conn = fmt.Sprintf("Surface ○ waiting on :%d...", m.server.Port())
	}
	who := "signed out"
	if u, ok := m.store.User(); ok {
		who = u.DisplayName()
	}
	topBar := topBarStyle.Render(fmt.Sprintf("%s  ·  %s  ·  org: %s", conn, who, m.orgLabel()))

	urlLine := dimStyle.Render("url: " + m.currentURL)
	if m.currentURL == "" {
		urlLine = dimStyle.Render("url: (none yet)")
	}

	paneStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Width(max(20, m.width-4)).
		Padding(0, 1)

	var pane string
	switch {
	case m.page != nil:
		body := lipgloss.NewStyle().Bold(true).Render(m.page.Title)
		if m.page.Excerpt != "" {
			body += "\n\n" + m.page.Excerpt
		}
		pane = paneStyle.Render(body)
	case m.currentURL != "":
		pane = paneStyle.Render(m.spin.View() + " fetching preview...")
	default:
		pane = paneStyle.Render("Connect the browser surface to start.")
	}

	status := ""
	if m.status != "" {
		status = dimStyle.Render(m.status)
	}

	bottomBar := dimStyle.Render("o orgs · c courses · b back · h home · r reload · e explore · s settings · x sign out · q quit")

	return lipgloss.JoinVertical(lipgloss.Left, topBar, urlLine, pane, status, bottomBar)
}
