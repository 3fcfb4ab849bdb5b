package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/fundr/internal/planner"
	"github.com/sadopc/fundr/internal/projection"
)

var goalFrequencyOptions = []huh.Option[string]{
	huh.NewOption("Weekly", projection.Weekly.String()),
	huh.NewOption("Biweekly", projection.Biweekly.String()),
	huh.NewOption("Monthly", projection.Monthly.String()),
	huh.NewOption("Once (by deadline)", projection.Once.String()),
}

type goalsModel struct {
	env    *env
	width  int
	height int

	reports []planner.GoalReport
	cursor  int

	formActive bool
	form       *huh.Form
	formType   string // "goal", "edit_goal", "contribute"

	formName        *string
	formTarget      *string
	formSaved       *string
	formInstallment *string
	formFrequency   *string
	formStart       *string
	formDeadline    *string
	formAmount      *string

	editingID string
}

func newGoalsModel(e *env) goalsModel {
	var name, target, saved, inst, freq, start, deadline, amount string
	return goalsModel{
		env:             e,
		formName:        &name,
		formTarget:      &target,
		formSaved:       &saved,
		formInstallment: &inst,
		formFrequency:   &freq,
		formStart:       &start,
		formDeadline:    &deadline,
		formAmount:      &amount,
	}
}

func (g *goalsModel) setSize(w, h int) {
	g.width = w
	g.height = h
}

type goalsDataMsg struct {
	reports []planner.GoalReport
	err     error
}

func (g goalsModel) refresh() tea.Cmd {
	e := g.env
	return func() tea.Msg {
		reports, err := e.svc.Goals(e.options())
		return goalsDataMsg{reports: reports, err: err}
	}
}

func (g goalsModel) selected() *projection.Goal {
	if g.cursor >= len(g.reports) {
		return nil
	}
	return &g.reports[g.cursor].Goal
}

func (g goalsModel) update(msg tea.Msg) (goalsModel, tea.Cmd) {
	if g.formActive && g.form != nil {
		return g.updateForm(msg)
	}

	switch msg := msg.(type) {
	case goalsDataMsg:
		if msg.err != nil {
			return g, func() tea.Msg { return errorStatus(msg.err) }
		}
		g.reports = msg.reports
		g.cursor = clampCursor(g.cursor, len(g.reports))
		return g, nil

	case dataChangedMsg:
		return g, g.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if g.cursor > 0 {
				g.cursor--
			}
		case key.Matches(msg, keys.Down):
			if g.cursor < len(g.reports)-1 {
				g.cursor++
			}
		case key.Matches(msg, keys.New):
			return g.showGoalForm(nil)
		case key.Matches(msg, keys.Edit):
			if goal := g.selected(); goal != nil {
				return g.showGoalForm(goal)
			}
		case key.Matches(msg, keys.Contribute):
			if g.selected() != nil {
				return g.showContributeForm()
			}
		case key.Matches(msg, keys.Delete):
			if goal := g.selected(); goal != nil {
				if err := g.env.store.DeleteGoal(goal.ID); err != nil {
					return g, func() tea.Msg { return errorStatus(err) }
				}
				return g, changed("Deleted goal " + goal.Name)
			}
		}
	}
	return g, nil
}

func (g goalsModel) showGoalForm(goal *projection.Goal) (goalsModel, tea.Cmd) {
	title := "New Goal"
	if goal != nil {
		title = "Edit " + goal.Name
		g.formType = "edit_goal"
		g.editingID = goal.ID
		*g.formName = goal.Name
		*g.formTarget = strconv.FormatFloat(goal.Target, 'f', -1, 64)
		*g.formSaved = strconv.FormatFloat(goal.Saved, 'f', -1, 64)
		*g.formInstallment = strconv.FormatFloat(goal.Installment, 'f', -1, 64)
		*g.formFrequency = goal.Frequency.String()
		*g.formStart = goal.StartDate
		*g.formDeadline = goal.Deadline
	} else {
		g.formType = "goal"
		g.editingID = ""
		*g.formName = ""
		*g.formTarget = ""
		*g.formSaved = ""
		*g.formInstallment = ""
		*g.formFrequency = projection.Monthly.String()
		*g.formStart = g.env.svc.Today().Format(projection.DateLayout)
		*g.formDeadline = ""
	}

	fields := []huh.Field{
		huh.NewInput().Title(title).Description("Goal name").Value(g.formName).Validate(validateRequired),
		huh.NewInput().Title("Target").Value(g.formTarget).Validate(validatePositive),
	}
	// Saved money changes through contributions once a goal exists.
	if goal == nil {
		fields = append(fields, huh.NewInput().Title("Already saved").Value(g.formSaved).Validate(validateAmount))
	}
	fields = append(fields,
		huh.NewInput().Title("Installment").Value(g.formInstallment).Validate(validateAmount),
		huh.NewSelect[string]().Title("Frequency").Options(goalFrequencyOptions...).Value(g.formFrequency),
	)

	g.form = huh.NewForm(
		huh.NewGroup(fields...),
		huh.NewGroup(
			huh.NewInput().Title("Start date").Description("YYYY-MM-DD, empty for today").
				Value(g.formStart).Validate(validateDate(true)),
			huh.NewInput().Title("Deadline").Description("Used by one-off goals").
				Value(g.formDeadline).Validate(validateDate(true)),
		),
	).WithShowHelp(true).WithShowErrors(true)

	g.formActive = true
	return g, g.form.Init()
}

func (g goalsModel) showContributeForm() (goalsModel, tea.Cmd) {
	g.formType = "contribute"
	*g.formAmount = ""

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Amount").Description("Negative to withdraw").
				Value(g.formAmount).Validate(validateAmount),
		),
	).WithShowHelp(true).WithShowErrors(true)

	g.formActive = true
	return g, g.form.Init()
}

func (g goalsModel) updateForm(msg tea.Msg) (goalsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		g.formActive = false
		g.form = nil
		return g, nil
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}
	if g.form.State != huh.StateCompleted {
		return g, cmd
	}

	g.formActive = false
	switch g.formType {
	case "goal", "edit_goal":
		goal, err := g.formGoal()
		if err != nil {
			return g, func() tea.Msg { return errorStatus(err) }
		}
		if g.formType == "edit_goal" {
			goal.ID = g.editingID
			if err := g.env.store.UpdateGoal(goal); err != nil {
				return g, func() tea.Msg { return errorStatus(err) }
			}
			return g, changed("Updated goal " + goal.Name)
		}
		if _, err := g.env.store.CreateGoal(goal); err != nil {
			return g, func() tea.Msg { return errorStatus(err) }
		}
		return g, changed("Created goal " + goal.Name)

	case "contribute":
		goal := g.selected()
		amount, _ := parseAmount(*g.formAmount)
		if goal == nil || amount == 0 {
			return g, nil
		}
		updated, err := g.env.store.Contribute(goal.ID, amount)
		if err != nil {
			return g, func() tea.Msg { return errorStatus(err) }
		}
		return g, changed(fmt.Sprintf("%s: %s of %s", updated.Name, formatMoney(updated.Saved), formatMoney(updated.Target)))
	}
	return g, nil
}

func (g goalsModel) formGoal() (projection.Goal, error) {
	freq, err := projection.ParseFrequency(*g.formFrequency)
	if err != nil {
		return projection.Goal{}, err
	}
	target, _ := parseAmount(*g.formTarget)
	saved, _ := parseAmount(*g.formSaved)
	inst, _ := parseAmount(*g.formInstallment)
	return projection.Goal{
		Name:        strings.TrimSpace(*g.formName),
		Target:      target,
		Saved:       saved,
		Installment: inst,
		Frequency:   freq,
		StartDate:   strings.TrimSpace(*g.formStart),
		Deadline:    strings.TrimSpace(*g.formDeadline),
	}, nil
}

func (g goalsModel) view() string {
	w := g.width - 4

	if g.formActive && g.form != nil {
		title := "Goal"
		if g.formType == "contribute" {
			if goal := g.selected(); goal != nil {
				title = "Contribute to " + goal.Name
			}
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", g.form.View()),
		)
	}

	title := titleStyle.Render("Savings Goals")
	if len(g.reports) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No goals yet. Press n to create one."),
		))
	}

	barW := w - 40
	if barW < 10 {
		barW = 10
	}

	rows := []string{title, ""}
	for i, r := range g.reports {
		rows = append(rows, g.renderGoal(i, r, barW), "")
	}
	rows = append(rows, mutedStyle.Render("  n: new  u: edit  c: contribute  d: delete"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (g goalsModel) renderGoal(i int, r planner.GoalReport, barW int) string {
	style := normalItemStyle
	if i == g.cursor {
		style = selectedItemStyle
	}

	fill := string(colorPrimary)
	if r.Progress.Status == projection.GoalCompleted {
		fill = string(colorSuccess)
	}
	bar := progress.New(
		progress.WithSolidFill(fill),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(colorMuted)

	head := style.Render(fmt.Sprintf("%s%-24s %s / %s",
		cursorPrefix(i == g.cursor), truncate(r.Goal.Name, 24), formatMoney(r.Goal.Saved), formatMoney(r.Goal.Target)))
	line := fmt.Sprintf("    %s %5.1f%%", bar.ViewAs(r.Progress.Percent/100), r.Progress.Percent)

	var detail string
	switch r.Progress.Status {
	case projection.GoalCompleted:
		detail = successStyle.Render("completed")
	case projection.GoalNoPlan:
		detail = warningStyle.Render("no installment plan")
	default:
		parts := []string{fmt.Sprintf("%s %s, %d left", formatMoney(r.Goal.Installment), r.Goal.Frequency, r.Progress.InstallmentsLeft)}
		if r.Progress.EstimatedCompletion != "" {
			parts = append(parts, "estimate "+r.Progress.EstimatedCompletion)
		}
		if r.SimulatedDate != "" {
			parts = append(parts, "forecast "+r.SimulatedDate)
		} else {
			parts = append(parts, "not reached in horizon")
		}
		detail = mutedStyle.Render(strings.Join(parts, "  "))
	}
	return lipgloss.JoinVertical(lipgloss.Left, head, line, "    "+detail)
}
