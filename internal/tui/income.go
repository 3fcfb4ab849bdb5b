package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/fundr/internal/projection"
	"github.com/sadopc/fundr/internal/store"
)

const shiftListLimit = 50

var frequencyOptions = []huh.Option[string]{
	huh.NewOption("Weekly", projection.Weekly.String()),
	huh.NewOption("Biweekly", projection.Biweekly.String()),
	huh.NewOption("Monthly", projection.Monthly.String()),
	huh.NewOption("Immediate", projection.Immediate.String()),
}

type incomeModel struct {
	env    *env
	width  int
	height int

	profiles      []store.Profile
	shifts        []store.Shift
	cursor        int
	shiftCursor   int
	viewingShifts bool

	formActive bool
	form       *huh.Form
	formType   string // "profile", "edit_profile", "shift"

	formName       *string
	formRate       *string
	formEmployment *string
	formFrequency  *string
	formAnchor     *string
	formWorkDays   *string
	formDate       *string
	formHours      *string
	formPayDate    *string

	editingID string
}

func newIncomeModel(e *env) incomeModel {
	var name, rate, emp, freq, anchor, days, date, hours, pay string
	return incomeModel{
		env:            e,
		formName:       &name,
		formRate:       &rate,
		formEmployment: &emp,
		formFrequency:  &freq,
		formAnchor:     &anchor,
		formWorkDays:   &days,
		formDate:       &date,
		formHours:      &hours,
		formPayDate:    &pay,
	}
}

func (m *incomeModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type profilesDataMsg struct {
	profiles []store.Profile
	err      error
}

type shiftsDataMsg struct {
	shifts []store.Shift
	err    error
}

func (m incomeModel) refresh() tea.Cmd {
	e := m.env
	cmds := []tea.Cmd{func() tea.Msg {
		profiles, err := e.store.ListProfiles(false)
		return profilesDataMsg{profiles: profiles, err: err}
	}}
	if m.viewingShifts {
		cmds = append(cmds, m.refreshShifts())
	}
	return tea.Batch(cmds...)
}

func (m incomeModel) refreshShifts() tea.Cmd {
	p := m.selected()
	if p == nil {
		return nil
	}
	e, id := m.env, p.ID
	return func() tea.Msg {
		shifts, err := e.store.ListShifts(store.ShiftFilter{ProfileID: id, Limit: shiftListLimit})
		return shiftsDataMsg{shifts: shifts, err: err}
	}
}

func (m incomeModel) selected() *store.Profile {
	if m.cursor >= len(m.profiles) {
		return nil
	}
	return &m.profiles[m.cursor]
}

func (m incomeModel) update(msg tea.Msg) (incomeModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case profilesDataMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return errorStatus(msg.err) }
		}
		m.profiles = msg.profiles
		m.cursor = clampCursor(m.cursor, len(m.profiles))
		if len(m.profiles) == 0 {
			m.viewingShifts = false
		}
		return m, nil

	case shiftsDataMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return errorStatus(msg.err) }
		}
		m.shifts = msg.shifts
		m.shiftCursor = clampCursor(m.shiftCursor, len(m.shifts))
		return m, nil

	case dataChangedMsg:
		return m, m.refresh()

	case tea.KeyMsg:
		if m.viewingShifts {
			return m.updateShiftList(msg)
		}
		return m.updateProfileList(msg)
	}
	return m, nil
}

func (m incomeModel) updateProfileList(msg tea.KeyMsg) (incomeModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.profiles)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(m.profiles) > 0 {
			m.viewingShifts = true
			m.shiftCursor = 0
			m.shifts = nil
			return m, m.refreshShifts()
		}
	case key.Matches(msg, keys.New):
		return m.showProfileForm(nil)
	case key.Matches(msg, keys.Edit):
		if p := m.selected(); p != nil {
			return m.showProfileForm(p)
		}
	case key.Matches(msg, keys.Delete):
		if p := m.selected(); p != nil {
			if err := m.env.store.ArchiveProfile(p.ID); err != nil {
				return m, func() tea.Msg { return errorStatus(err) }
			}
			return m, changed("Archived " + p.Name)
		}
	}
	return m, nil
}

func (m incomeModel) updateShiftList(msg tea.KeyMsg) (incomeModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.viewingShifts = false
		return m, nil
	case key.Matches(msg, keys.Up):
		if m.shiftCursor > 0 {
			m.shiftCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.shiftCursor < len(m.shifts)-1 {
			m.shiftCursor++
		}
	case key.Matches(msg, keys.New):
		return m.showShiftForm()
	case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Settle):
		if m.shiftCursor >= len(m.shifts) {
			return m, nil
		}
		sh := m.shifts[m.shiftCursor]
		if sh.Status == projection.ShiftPaid || sh.Running() {
			return m, nil
		}
		if err := m.env.store.MarkShiftPaid(sh.ID); err != nil {
			return m, func() tea.Msg { return errorStatus(err) }
		}
		return m, changed(fmt.Sprintf("Shift %s marked paid", sh.Date))
	case key.Matches(msg, keys.Delete):
		if m.shiftCursor >= len(m.shifts) {
			return m, nil
		}
		sh := m.shifts[m.shiftCursor]
		if sh.Running() {
			return m, func() tea.Msg {
				return statusMsg{text: "Stop the running shift before deleting it", isError: true}
			}
		}
		if err := m.env.store.DeleteShift(sh.ID); err != nil {
			return m, func() tea.Msg { return errorStatus(err) }
		}
		return m, changed(fmt.Sprintf("Deleted shift %s", sh.Date))
	}
	return m, nil
}

// showProfileForm opens the create form, or the edit form when p is set.
func (m incomeModel) showProfileForm(p *store.Profile) (incomeModel, tea.Cmd) {
	title := "New Payroll Profile"
	if p != nil {
		title = "Edit " + p.Name
		m.formType = "edit_profile"
		m.editingID = p.ID
		*m.formName = p.Name
		*m.formRate = strconv.FormatFloat(p.HourlyRate, 'f', -1, 64)
		*m.formEmployment = string(p.Employment)
		*m.formFrequency = p.Frequency.String()
		*m.formAnchor = p.PayDayAnchor
		*m.formWorkDays = strconv.Itoa(p.WorkDays)
	} else {
		m.formType = "profile"
		m.editingID = ""
		*m.formName = ""
		*m.formRate = ""
		*m.formEmployment = string(projection.PartTime)
		*m.formFrequency = projection.Biweekly.String()
		*m.formAnchor = ""
		*m.formWorkDays = "5"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Description("Employer name").Value(m.formName).Validate(validateRequired),
			huh.NewInput().Title("Hourly rate").Value(m.formRate).Validate(validatePositive),
			huh.NewSelect[string]().Title("Employment").Options(
				huh.NewOption("Part time (paid per shift)", string(projection.PartTime)),
				huh.NewOption("Full time (fixed salary)", string(projection.FullTime)),
			).Value(m.formEmployment),
			huh.NewSelect[string]().Title("Pay frequency").Options(frequencyOptions...).Value(m.formFrequency),
		),
		huh.NewGroup(
			huh.NewInput().Title("Pay day anchor").Description("YYYY-MM-DD, empty for today").
				Value(m.formAnchor).Validate(validateDate(true)),
			huh.NewInput().Title("Work days per week").Value(m.formWorkDays).Validate(validateWorkDays),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m incomeModel) showShiftForm() (incomeModel, tea.Cmd) {
	m.formType = "shift"
	*m.formDate = m.env.svc.Today().Format(projection.DateLayout)
	*m.formHours = ""
	*m.formPayDate = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work date").Description("YYYY-MM-DD").Value(m.formDate).Validate(validateDate(false)),
			huh.NewInput().Title("Hours").Value(m.formHours).Validate(validatePositive),
			huh.NewInput().Title("Payment date").Description("Empty to derive from the pay cycle").
				Value(m.formPayDate).Validate(validateDate(true)),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func validateWorkDays(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 7 {
		return fmt.Errorf("1-7 days")
	}
	return nil
}

func (m incomeModel) updateForm(msg tea.Msg) (incomeModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.formActive = false
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.formActive = false
	switch m.formType {
	case "profile", "edit_profile":
		p, err := m.formProfile()
		if err != nil {
			return m, func() tea.Msg { return errorStatus(err) }
		}
		if m.formType == "edit_profile" {
			p.ID = m.editingID
			if err := m.env.store.UpdateProfile(p); err != nil {
				return m, func() tea.Msg { return errorStatus(err) }
			}
			return m, changed("Updated " + p.Name)
		}
		if _, err := m.env.store.CreateProfile(p); err != nil {
			return m, func() tea.Msg { return errorStatus(err) }
		}
		m.env.log.WithField("profile", p.Name).Info("payroll profile created")
		return m, changed("Created " + p.Name)

	case "shift":
		prof := m.selected()
		if prof == nil {
			return m, nil
		}
		hours, _ := parseAmount(*m.formHours)
		sh, err := m.env.store.AddShift(prof.ID, strings.TrimSpace(*m.formDate), hours, strings.TrimSpace(*m.formPayDate))
		if err != nil {
			return m, func() tea.Msg { return errorStatus(err) }
		}
		return m, changed(fmt.Sprintf("Shift %s: %s, paid %s", sh.Date, formatMoney(sh.TotalPay), sh.PaymentDate))
	}
	return m, nil
}

func (m incomeModel) formProfile() (projection.PayrollProfile, error) {
	rate, _ := parseAmount(*m.formRate)
	freq, err := projection.ParseFrequency(*m.formFrequency)
	if err != nil {
		return projection.PayrollProfile{}, err
	}
	days, _ := strconv.Atoi(strings.TrimSpace(*m.formWorkDays))
	return projection.PayrollProfile{
		Name:         strings.TrimSpace(*m.formName),
		HourlyRate:   rate,
		Employment:   projection.EmploymentKind(*m.formEmployment),
		Frequency:    freq,
		PayDayAnchor: strings.TrimSpace(*m.formAnchor),
		WorkDays:     days,
	}, nil
}

func (m incomeModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := "Payroll Profile"
		if m.formType == "shift" {
			if p := m.selected(); p != nil {
				title = "Add shift for " + p.Name
			}
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", m.form.View()),
		)
	}

	if m.viewingShifts {
		return m.renderShifts(w)
	}
	return m.renderProfiles(w)
}

func (m incomeModel) renderProfiles(w int) string {
	title := titleStyle.Render("Income")
	if len(m.profiles) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No payroll profiles yet. Press n to create one."),
		))
	}

	rows := []string{title, ""}
	for i, p := range m.profiles {
		style := normalItemStyle
		if i == m.cursor {
			style = selectedItemStyle
		}
		kind := "part time"
		detail := formatMoney(p.HourlyRate) + "/h"
		if p.Employment == projection.FullTime {
			kind = "full time"
			detail = formatMoney(salary(p.PayrollProfile)) + " per cycle"
		}
		anchor := p.PayDayAnchor
		if anchor == "" {
			anchor = "today"
		}
		line := fmt.Sprintf("%s%-20s %-10s %-10s %-18s from %s",
			cursorPrefix(i == m.cursor), truncate(p.Name, 20), kind, p.Frequency, detail, anchor)
		rows = append(rows, style.Render(line))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: shifts  n: new  u: edit  d: archive"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m incomeModel) renderShifts(w int) string {
	p := m.selected()
	if p == nil {
		return ""
	}

	var pending float64
	for _, sh := range m.shifts {
		if sh.Status == projection.ShiftPending {
			pending += sh.TotalPay
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(p.Name), "  ",
		mutedStyle.Render("pending "), highlightStyle.Render(formatMoney(pending)),
	)

	rows := []string{header, ""}
	if len(m.shifts) == 0 {
		rows = append(rows, mutedStyle.Render("  No shifts recorded. Press n to add one."))
	}
	for i, sh := range m.shifts {
		style := normalItemStyle
		if i == m.shiftCursor {
			style = selectedItemStyle
		}
		status := warningStyle.Render(string(sh.Status))
		switch {
		case sh.Running():
			status = successStyle.Render("running")
		case sh.Status == projection.ShiftPaid:
			status = mutedStyle.Render(string(sh.Status))
		}
		line := fmt.Sprintf("%s%s  %6.2fh  %12s  pay %s",
			cursorPrefix(i == m.shiftCursor), sh.Date, sh.Hours, formatMoney(sh.TotalPay), sh.PaymentDate)
		rows = append(rows, style.Render(line)+"  "+status)
	}
	rows = append(rows, "", mutedStyle.Render("  n: add shift  space/p: mark paid  d: delete  esc: back"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
