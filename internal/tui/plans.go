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
)

type planSection int

const (
	sectionBudgets planSection = iota
	sectionSubscriptions
	sectionEvents
)

var sectionNames = []string{"Budgets", "Subscriptions", "Events"}

type plansModel struct {
	env    *env
	width  int
	height int

	section       planSection
	budgets       []projection.Budget
	subscriptions []projection.Subscription
	events        []projection.Event
	cursor        int
	itemCursor    int
	viewingItems  bool

	formActive bool
	form       *huh.Form
	formType   string // "budget", "subscription", "event", "item"

	formName   *string
	formAmount *string
	formDay    *string
	formDate   *string
}

func newPlansModel(e *env) plansModel {
	var name, amount, day, date string
	return plansModel{
		env:        e,
		formName:   &name,
		formAmount: &amount,
		formDay:    &day,
		formDate:   &date,
	}
}

func (p *plansModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type plansDataMsg struct {
	budgets       []projection.Budget
	subscriptions []projection.Subscription
	events        []projection.Event
	err           error
}

func (p plansModel) refresh() tea.Cmd {
	e := p.env
	return func() tea.Msg {
		var msg plansDataMsg
		if msg.budgets, msg.err = e.store.ListBudgets(); msg.err != nil {
			return msg
		}
		if msg.subscriptions, msg.err = e.store.ListSubscriptions(); msg.err != nil {
			return msg
		}
		msg.events, msg.err = e.store.ListEvents()
		return msg
	}
}

func (p plansModel) sectionLen() int {
	switch p.section {
	case sectionBudgets:
		return len(p.budgets)
	case sectionSubscriptions:
		return len(p.subscriptions)
	case sectionEvents:
		return len(p.events)
	}
	return 0
}

func (p plansModel) selectedEvent() *projection.Event {
	if p.section != sectionEvents || p.cursor >= len(p.events) {
		return nil
	}
	return &p.events[p.cursor]
}

func (p plansModel) update(msg tea.Msg) (plansModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case plansDataMsg:
		if msg.err != nil {
			return p, func() tea.Msg { return errorStatus(msg.err) }
		}
		p.budgets = msg.budgets
		p.subscriptions = msg.subscriptions
		p.events = msg.events
		p.cursor = clampCursor(p.cursor, p.sectionLen())
		if ev := p.selectedEvent(); ev != nil {
			p.itemCursor = clampCursor(p.itemCursor, len(ev.Items))
		} else {
			p.viewingItems = false
		}
		return p, nil

	case dataChangedMsg:
		return p, p.refresh()

	case tea.KeyMsg:
		if p.viewingItems {
			return p.updateItems(msg)
		}
		return p.updateList(msg)
	}
	return p, nil
}

func (p plansModel) updateList(msg tea.KeyMsg) (plansModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Left):
		p.section = (p.section + planSection(len(sectionNames)) - 1) % planSection(len(sectionNames))
		p.cursor = 0
	case key.Matches(msg, keys.Right):
		p.section = (p.section + 1) % planSection(len(sectionNames))
		p.cursor = 0
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < p.sectionLen()-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if p.selectedEvent() != nil {
			p.viewingItems = true
			p.itemCursor = 0
		}
	case key.Matches(msg, keys.New):
		return p.showForm(p.section)
	case key.Matches(msg, keys.Toggle):
		return p, p.togglePaused()
	case key.Matches(msg, keys.Delete):
		return p, p.deleteSelected()
	}
	return p, nil
}

func (p plansModel) togglePaused() tea.Cmd {
	if p.cursor >= p.sectionLen() {
		return nil
	}
	var err error
	var status string
	switch p.section {
	case sectionBudgets:
		b := p.budgets[p.cursor]
		err = p.env.store.SetBudgetActive(b.ID, b.Paused)
		status = pauseStatus(b.Category, !b.Paused)
	case sectionSubscriptions:
		s := p.subscriptions[p.cursor]
		err = p.env.store.SetSubscriptionActive(s.ID, s.Paused)
		status = pauseStatus(s.Name, !s.Paused)
	default:
		return nil
	}
	if err != nil {
		return func() tea.Msg { return errorStatus(err) }
	}
	return changed(status)
}

func pauseStatus(name string, paused bool) string {
	if paused {
		return "Paused " + name
	}
	return "Resumed " + name
}

func (p plansModel) deleteSelected() tea.Cmd {
	if p.cursor >= p.sectionLen() {
		return nil
	}
	var err error
	var name string
	switch p.section {
	case sectionBudgets:
		name = p.budgets[p.cursor].Category
		err = p.env.store.DeleteBudget(p.budgets[p.cursor].ID)
	case sectionSubscriptions:
		name = p.subscriptions[p.cursor].Name
		err = p.env.store.DeleteSubscription(p.subscriptions[p.cursor].ID)
	case sectionEvents:
		name = p.events[p.cursor].Name
		err = p.env.store.DeleteEvent(p.events[p.cursor].ID)
	}
	if err != nil {
		return func() tea.Msg { return errorStatus(err) }
	}
	return changed("Deleted " + name)
}

func (p plansModel) updateItems(msg tea.KeyMsg) (plansModel, tea.Cmd) {
	ev := p.selectedEvent()
	if ev == nil {
		p.viewingItems = false
		return p, nil
	}

	switch {
	case key.Matches(msg, keys.Back):
		p.viewingItems = false
	case key.Matches(msg, keys.Up):
		if p.itemCursor > 0 {
			p.itemCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.itemCursor < len(ev.Items)-1 {
			p.itemCursor++
		}
	case key.Matches(msg, keys.New):
		return p.showItemForm()
	case key.Matches(msg, keys.Toggle):
		if p.itemCursor < len(ev.Items) {
			it := ev.Items[p.itemCursor]
			if err := p.env.store.SetItemChecked(it.ID, !it.Checked); err != nil {
				return p, func() tea.Msg { return errorStatus(err) }
			}
			return p, changed("")
		}
	case key.Matches(msg, keys.Delete):
		if p.itemCursor < len(ev.Items) {
			it := ev.Items[p.itemCursor]
			if err := p.env.store.DeleteEventItem(it.ID); err != nil {
				return p, func() tea.Msg { return errorStatus(err) }
			}
			return p, changed("Deleted " + it.Name)
		}
	}
	return p, nil
}

func (p plansModel) showForm(section planSection) (plansModel, tea.Cmd) {
	*p.formName = ""
	*p.formAmount = ""
	*p.formDay = "1"
	*p.formDate = ""

	var group *huh.Group
	switch section {
	case sectionBudgets:
		p.formType = "budget"
		group = huh.NewGroup(
			huh.NewInput().Title("Category").Value(p.formName).Validate(validateRequired),
			huh.NewInput().Title("Monthly limit").Value(p.formAmount).Validate(validatePositive),
		)
	case sectionSubscriptions:
		p.formType = "subscription"
		group = huh.NewGroup(
			huh.NewInput().Title("Name").Value(p.formName).Validate(validateRequired),
			huh.NewInput().Title("Price").Value(p.formAmount).Validate(validatePositive),
			huh.NewInput().Title("Billing day").Description("1-31").Value(p.formDay).Validate(validateDay),
		)
	case sectionEvents:
		p.formType = "event"
		group = huh.NewGroup(
			huh.NewInput().Title("Event").Value(p.formName).Validate(validateRequired),
			huh.NewInput().Title("Date").Description("YYYY-MM-DD").Value(p.formDate).Validate(validateDate(false)),
		)
	}

	p.form = huh.NewForm(group).WithShowHelp(true).WithShowErrors(true)
	p.formActive = true
	return p, p.form.Init()
}

func (p plansModel) showItemForm() (plansModel, tea.Cmd) {
	p.formType = "item"
	*p.formName = ""
	*p.formAmount = ""

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Item").Value(p.formName).Validate(validateRequired),
			huh.NewInput().Title("Cost").Value(p.formAmount).Validate(validateAmount),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p plansModel) updateForm(msg tea.Msg) (plansModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		p.formActive = false
		p.form = nil
		return p, nil
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}
	if p.form.State != huh.StateCompleted {
		return p, cmd
	}

	p.formActive = false
	name := strings.TrimSpace(*p.formName)
	amount, _ := parseAmount(*p.formAmount)

	var err error
	switch p.formType {
	case "budget":
		_, err = p.env.store.CreateBudget(name, amount)
	case "subscription":
		day, _ := strconv.Atoi(strings.TrimSpace(*p.formDay))
		_, err = p.env.store.CreateSubscription(name, amount, day)
	case "event":
		_, err = p.env.store.CreateEvent(name, strings.TrimSpace(*p.formDate))
	case "item":
		ev := p.selectedEvent()
		if ev == nil {
			return p, nil
		}
		_, err = p.env.store.AddEventItem(ev.ID, name, amount)
	}
	if err != nil {
		return p, func() tea.Msg { return errorStatus(err) }
	}
	return p, changed("Added " + name)
}

func (p plansModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := "New " + strings.TrimSuffix(sectionNames[p.section], "s")
		if p.formType == "item" {
			if ev := p.selectedEvent(); ev != nil {
				title = "New item for " + ev.Name
			}
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", p.form.View()),
		)
	}

	if p.viewingItems {
		if ev := p.selectedEvent(); ev != nil {
			return p.renderItems(w, *ev)
		}
	}

	var tabs []string
	for i, name := range sectionNames {
		if planSection(i) == p.section {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	var body []string
	switch p.section {
	case sectionBudgets:
		body = p.renderBudgets()
	case sectionSubscriptions:
		body = p.renderSubscriptions()
	case sectionEvents:
		body = p.renderEvents()
	}

	help := "  ←/→: section  n: new  space: pause/resume  d: delete"
	if p.section == sectionEvents {
		help = "  ←/→: section  n: new  enter: items  d: delete"
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...),
		"",
		strings.Join(body, "\n"),
		"",
		mutedStyle.Render(help),
	))
}

func (p plansModel) row(i int, line string, paused bool) string {
	style := normalItemStyle
	if paused {
		style = excludedStyle
	}
	if i == p.cursor {
		style = style.Inherit(selectedItemStyle)
	}
	return style.Render(cursorPrefix(i == p.cursor) + line)
}

func (p plansModel) renderBudgets() []string {
	if len(p.budgets) == 0 {
		return []string{mutedStyle.Render("  No budgets. Press n to add one.")}
	}
	var total float64
	rows := make([]string, 0, len(p.budgets)+2)
	for i, b := range p.budgets {
		if !b.Paused {
			total += b.Limit
		}
		rows = append(rows, p.row(i, fmt.Sprintf("%-24s %12s/mo", truncate(b.Category, 24), formatMoney(b.Limit)), b.Paused))
	}
	rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  Monthly total %s  Daily burn %s",
		formatMoney(total), formatMoney(projection.DailyBurn(p.budgets, nil)))))
	return rows
}

func (p plansModel) renderSubscriptions() []string {
	if len(p.subscriptions) == 0 {
		return []string{mutedStyle.Render("  No subscriptions. Press n to add one.")}
	}
	var total float64
	rows := make([]string, 0, len(p.subscriptions)+2)
	for i, s := range p.subscriptions {
		if !s.Paused {
			total += s.Price
		}
		rows = append(rows, p.row(i, fmt.Sprintf("%-24s %12s  day %2d", truncate(s.Name, 24), formatMoney(s.Price), s.BillingDay), s.Paused))
	}
	rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  Monthly total %s", formatMoney(total))))
	return rows
}

func (p plansModel) renderEvents() []string {
	if len(p.events) == 0 {
		return []string{mutedStyle.Render("  No events. Press n to plan one.")}
	}
	rows := make([]string, 0, len(p.events))
	for i, ev := range p.events {
		done := 0
		for _, it := range ev.Items {
			if it.Checked {
				done++
			}
		}
		line := fmt.Sprintf("%-24s %s  %12s  %d/%d items", truncate(ev.Name, 24), ev.Date,
			formatMoney(projection.UnsettledCost(ev)), done, len(ev.Items))
		rows = append(rows, p.row(i, line, false))
	}
	return rows
}

func (p plansModel) renderItems(w int, ev projection.Event) string {
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(ev.Name), "  ",
		mutedStyle.Render(ev.Date+"  to spend "), highlightStyle.Render(formatMoney(projection.UnsettledCost(ev))),
	)

	rows := []string{header, ""}
	if len(ev.Items) == 0 {
		rows = append(rows, mutedStyle.Render("  No items. Press n to add one."))
	}
	for i, it := range ev.Items {
		mark := "[ ]"
		style := normalItemStyle
		if it.Checked {
			mark = "[x]"
			style = excludedStyle
		}
		if i == p.itemCursor {
			style = style.Inherit(selectedItemStyle)
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s %12s",
			cursorPrefix(i == p.itemCursor), mark, truncate(it.Name, 24), formatMoney(it.Cost))))
	}
	rows = append(rows, "", mutedStyle.Render("  n: add item  space: check  d: delete  esc: back"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
