package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/fundr/internal/projection"
	"github.com/sadopc/fundr/internal/store"
)

const upcomingDays = 7

type dashboardModel struct {
	env    *env
	clock  shiftClock
	width  int
	height int

	accounts []projection.Account
	total    float64
	upcoming []projection.Day
	profiles []store.Profile
	cursor   int

	// Profile picker state
	picking      bool
	pickerCursor int

	formActive bool
	form       *huh.Form
	formType   string // "account", "transaction"

	formName   *string
	formKind   *string
	formAmount *string
	formLimit  *string
	formNote   *string
}

func newDashboardModel(e *env) dashboardModel {
	name, kind, amount, limit, note := "", string(projection.AccountDebit), "", "", ""
	return dashboardModel{
		env:        e,
		clock:      newShiftClock(e.store),
		formName:   &name,
		formKind:   &kind,
		formAmount: &amount,
		formLimit:  &limit,
		formNote:   &note,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.clock.running }
func (d dashboardModel) elapsed() time.Duration {
	return d.clock.currentElapsed()
}

type dashboardDataMsg struct {
	accounts []projection.Account
	total    float64
	upcoming []projection.Day
	profiles []store.Profile
	err      error
}

func (d dashboardModel) loadData() tea.Cmd {
	e := d.env
	return func() tea.Msg {
		accounts, err := e.store.ListAccounts()
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		total, _ := e.store.TotalBalance()
		profiles, _ := e.store.ListProfiles(false)

		var upcoming []projection.Day
		if f, err := e.svc.Forecast(e.options()); err == nil {
			upcoming = f.Days
			if len(upcoming) > upcomingDays {
				upcoming = upcoming[:upcomingDays]
			}
		}
		return dashboardDataMsg{accounts: accounts, total: total, upcoming: upcoming, profiles: profiles}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case dashboardDataMsg:
		if msg.err != nil {
			return d, func() tea.Msg { return errorStatus(msg.err) }
		}
		d.accounts = msg.accounts
		d.total = msg.total
		d.upcoming = msg.upcoming
		d.profiles = msg.profiles
		d.cursor = clampCursor(d.cursor, len(d.accounts))
		if err := d.clock.restore(); err != nil {
			return d, func() tea.Msg { return errorStatus(err) }
		}
		return d, nil

	case dataChangedMsg:
		return d, d.loadData()

	case tickMsg:
		d.clock.tick()
		return d, nil

	case tea.KeyMsg:
		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.accounts)-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.Start):
			if d.clock.running {
				return d, nil
			}
			if len(d.profiles) == 0 {
				return d, func() tea.Msg {
					return statusMsg{text: "No payroll profiles yet. Press 3 to go to Income and create one.", isError: true}
				}
			}
			if len(d.profiles) == 1 {
				return d.startShift(d.profiles[0])
			}
			d.picking = true
			d.pickerCursor = 0
			return d, nil

		case key.Matches(msg, keys.Stop):
			return d.stopShift()

		case key.Matches(msg, keys.New):
			return d.showAccountForm()

		case key.Matches(msg, keys.Record):
			if len(d.accounts) > 0 {
				return d.showTransactionForm()
			}

		case key.Matches(msg, keys.Delete):
			if len(d.accounts) > 0 {
				a := d.accounts[d.cursor]
				if err := d.env.store.DeleteAccount(a.ID); err != nil {
					return d, func() tea.Msg { return errorStatus(err) }
				}
				return d, changed("Deleted account " + a.Name)
			}

		case key.Matches(msg, keys.Settle):
			return d, d.settle()
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.profiles)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		p := d.profiles[d.pickerCursor]
		d.picking = false
		return d.startShift(p)
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) startShift(p store.Profile) (dashboardModel, tea.Cmd) {
	sh, err := d.clock.start(p.ID, p.Name)
	if err != nil {
		return d, func() tea.Msg { return errorStatus(err) }
	}
	d.env.log.WithField("profile", p.Name).Info("shift started")
	return d, func() tea.Msg { return shiftStartedMsg{shift: sh} }
}

func (d dashboardModel) stopShift() (dashboardModel, tea.Cmd) {
	sh, err := d.clock.stop()
	if err != nil {
		return d, func() tea.Msg { return errorStatus(err) }
	}
	if sh == nil {
		return d, nil
	}
	d.env.log.WithField("hours", sh.Hours).Info("shift stopped")
	return d, tea.Batch(
		changed(""),
		func() tea.Msg { return shiftStoppedMsg{shift: sh} },
	)
}

func (d dashboardModel) settle() tea.Cmd {
	svc := d.env.svc
	return func() tea.Msg {
		res, err := svc.Settle()
		if err != nil {
			return errorStatus(err)
		}
		if res.Settled == 0 {
			return statusMsg{text: "No shifts due"}
		}
		return dataChangedMsg{status: fmt.Sprintf("Settled %d shift(s), %s", res.Settled, formatMoney(res.Credited))}
	}
}

func (d dashboardModel) showAccountForm() (dashboardModel, tea.Cmd) {
	*d.formName = ""
	*d.formKind = string(projection.AccountDebit)
	*d.formAmount = ""
	*d.formLimit = ""
	d.formType = "account"

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Account Name").Value(d.formName).Validate(validateRequired),
			huh.NewSelect[string]().Title("Kind").Options(
				huh.NewOption("Debit", string(projection.AccountDebit)),
				huh.NewOption("Cash", string(projection.AccountCash)),
				huh.NewOption("Credit", string(projection.AccountCredit)),
			).Value(d.formKind),
			huh.NewInput().Title("Opening balance").Value(d.formAmount).Validate(validateAmount),
			huh.NewInput().Title("Credit limit (credit accounts)").Value(d.formLimit).Validate(validateAmount),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d dashboardModel) showTransactionForm() (dashboardModel, tea.Cmd) {
	*d.formAmount = ""
	*d.formNote = ""
	d.formType = "transaction"

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Amount (negative to spend)").Value(d.formAmount).Validate(validateAmount),
			huh.NewInput().Title("Note").Value(d.formNote),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		d.formActive = false
		d.form = nil
		return d, nil
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}
	if d.form.State != huh.StateCompleted {
		return d, cmd
	}

	d.formActive = false
	amount, _ := parseAmount(*d.formAmount)
	switch d.formType {
	case "account":
		limit, _ := parseAmount(*d.formLimit)
		a, err := d.env.store.CreateAccount(strings.TrimSpace(*d.formName), projection.AccountKind(*d.formKind), amount, limit)
		if err != nil {
			return d, func() tea.Msg { return errorStatus(err) }
		}
		return d, changed("Created account " + a.Name)
	case "transaction":
		if amount == 0 || d.cursor >= len(d.accounts) {
			return d, nil
		}
		a := d.accounts[d.cursor]
		if _, err := d.env.store.ApplyTransaction(a.ID, amount, *d.formNote); err != nil {
			return d, func() tea.Msg { return errorStatus(err) }
		}
		return d, changed(fmt.Sprintf("%s %s", a.Name, formatSignedMoney(amount)))
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	if d.formActive && d.form != nil {
		title := "New Account"
		if d.formType == "transaction" && d.cursor < len(d.accounts) {
			title = "Transaction on " + d.accounts[d.cursor].Name
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", d.form.View()),
		)
	}

	clockPanel := d.renderClockPanel(w)
	accountsPanel := d.renderAccountsPanel(w)

	var bottom string
	if d.picking {
		bottom = d.renderProfilePicker(w)
	} else {
		bottom = d.renderUpcomingPanel(w)
	}
	return lipgloss.JoinVertical(lipgloss.Left, clockPanel, accountsPanel, bottom)
}

func (d dashboardModel) renderClockPanel(w int) string {
	if d.clock.running {
		content := lipgloss.JoinVertical(lipgloss.Center,
			clockRunningStyle.Width(w-6).Render(formatDuration(d.clock.currentElapsed())),
			successStyle.Render("●  ON SHIFT"),
			highlightStyle.Render(d.clock.profileName),
		)
		return activePanelStyle.Width(w).Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		clockStyle.Width(w-6).Render("00:00:00"),
		mutedStyle.Render("■  OFF SHIFT"),
		mutedStyle.Render("Press s to clock in"),
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderAccountsPanel(w int) string {
	header := fmt.Sprintf("%s  %s", titleStyle.Render("Accounts"), highlightStyle.Render(formatMoney(d.total)))

	if len(d.accounts) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No accounts yet. Press n to add one."),
		))
	}

	rows := []string{header}
	for i, a := range d.accounts {
		style := normalItemStyle
		if i == d.cursor {
			style = selectedItemStyle
		}
		line := style.Render(fmt.Sprintf("%s%-20s %-7s", cursorPrefix(i == d.cursor), a.Name, a.Kind))
		rows = append(rows, line+" "+moneyStyled(a.Balance))
	}
	rows = append(rows, "", mutedStyle.Render("  n: new  t: transaction  d: delete  p: settle due pay"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderUpcomingPanel(w int) string {
	title := titleStyle.Render("Next 7 days")
	if len(d.upcoming) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing projected"),
		))
	}

	rows := []string{title}
	for _, day := range d.upcoming {
		var labels []string
		for _, e := range day.Log {
			if e.Kind == projection.KindBudget {
				continue
			}
			labels = append(labels, fmt.Sprintf("%s %s", e.Label, formatSignedMoney(e.Amount)))
		}
		detail := mutedStyle.Render(strings.Join(labels, ", "))
		rows = append(rows, fmt.Sprintf("  %s  %12s  %s", day.Date, moneyStyled(day.Balance), detail))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderProfilePicker(w int) string {
	rows := []string{titleStyle.Render("Clock in for")}
	for i, p := range d.profiles {
		style := normalItemStyle
		if i == d.pickerCursor {
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s  %s/h", cursorPrefix(i == d.pickerCursor), p.Name, formatMoney(p.HourlyRate))))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: select  esc: cancel"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
