package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/sadopc/fundr/internal/export"
	"github.com/sadopc/fundr/internal/planner"
	"github.com/sadopc/fundr/internal/store"
)

// env is shared by every view.
type env struct {
	store    *store.Store
	svc      *planner.Service
	log      *logrus.Logger
	fallback planner.Options
}

// options returns the forecast options currently persisted in settings.
func (e *env) options() planner.Options {
	return e.svc.Defaults(e.fallback)
}

// App is the root Bubble Tea model.
type App struct {
	env    *env
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	forecast  forecastModel
	income    incomeModel
	goals     goalsModel
	plans     plansModel
	settings  settingsModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(s *store.Store, svc *planner.Service, log *logrus.Logger, fallback planner.Options) App {
	h := help.New()
	h.ShowAll = false

	e := &env{store: s, svc: svc, log: log, fallback: fallback}
	return App{
		env:        e,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(e),
		forecast:   newForecastModel(e),
		income:     newIncomeModel(e),
		goals:      newGoalsModel(e),
		plans:      newPlansModel(e),
		settings:   newSettingsModel(e),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.forecast.setSize(a.width, contentHeight)
		a.income.setSize(a.width, contentHeight)
		a.goals.setSize(a.width, contentHeight)
		a.plans.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A view capturing input (form, picker) sees keys first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewDashboard)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewForecast)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewIncome)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewGoals)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewPlans)
		case key.Matches(msg, keys.Tab6):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		// The shift clock lives on the dashboard but ticks on every tab.
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, tea.Batch(tickCmd(), cmd)

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		if msg.isError {
			a.env.log.Warn(msg.text)
		}
		return a, nil

	case dataChangedMsg:
		if msg.status != "" {
			a.status = msg.status
			a.statusError = false
		}
		return a.broadcast(msg)

	case shiftStartedMsg:
		a.status = "Clocked in"
		a.statusError = false
		return a, nil

	case shiftStoppedMsg:
		a.status = fmt.Sprintf("Clocked out: %.2fh, %s", msg.shift.Hours, formatMoney(msg.shift.TotalPay))
		a.statusError = false
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

// broadcast hands msg to every view so none keeps showing stale numbers.
func (a App) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 6)
	a.dashboard, cmds[0] = a.dashboard.update(msg)
	a.forecast, cmds[1] = a.forecast.update(msg)
	a.income, cmds[2] = a.income.update(msg)
	a.goals, cmds[3] = a.goals.update(msg)
	a.plans, cmds[4] = a.plans.update(msg)
	a.settings, cmds[5] = a.settings.update(msg)
	return a, tea.Batch(cmds...)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewForecast:
		a.forecast, cmd = a.forecast.update(msg)
	case viewIncome:
		a.income, cmd = a.income.update(msg)
	case viewGoals:
		a.goals, cmd = a.goals.update(msg)
	case viewPlans:
		a.plans, cmd = a.plans.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.formActive || a.dashboard.picking
	case viewIncome:
		return a.income.formActive
	case viewGoals:
		return a.goals.formActive
	case viewPlans:
		return a.plans.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewForecast:
		return a.forecast.refresh()
	case viewIncome:
		return a.income.refresh()
	case viewGoals:
		return a.goals.refresh()
	case viewPlans:
		return a.plans.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewForecast:
		content = a.forecast.view()
	case viewIncome:
		content = a.income.view()
	case viewGoals:
		content = a.goals.view()
	case viewPlans:
		content = a.plans.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := a.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("fundr")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	clock := ""
	if a.dashboard.isRunning() {
		clock = successStyle.Render(" ● " + formatDuration(a.dashboard.elapsed()))
	}

	left := footerStyle.Render(helpView)
	right := clock + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Forecast"), ""}
	for i, f := range exportFormats {
		style := normalItemStyle
		if i == a.exportCursor {
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursorPrefix(i == a.exportCursor)+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		home, err := os.UserHomeDir()
		if err != nil {
			return a, func() tea.Msg { return errorStatus(err) }
		}
		return a, a.doExport(a.exportCursor, home)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the current forecast into dir.
func (a App) doExport(format int, dir string) tea.Cmd {
	e := a.env
	return func() tea.Msg {
		f, err := e.svc.Forecast(e.options())
		if err != nil {
			return errorStatus(err)
		}

		date := e.svc.Today().Format("2006-01-02")
		var path string
		if format == 0 {
			path = filepath.Join(dir, fmt.Sprintf("fundr-forecast-%s.csv", date))
			err = export.ToCSV(f.Days, path)
		} else {
			path = filepath.Join(dir, fmt.Sprintf("fundr-forecast-%s.json", date))
			err = export.ToJSON(f.Days, path)
		}
		if err != nil {
			return errorStatus(fmt.Errorf("export: %w", err))
		}
		e.log.WithField("path", path).Info("forecast exported")
		return exportDoneMsg{path: path}
	}
}
