package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/fundr/internal/planner"
	"github.com/sadopc/fundr/internal/projection"
	"github.com/sadopc/fundr/internal/store"
)

const maxHorizonMonths = projection.MaxMonths

// sourceItem is a row of the what-if list: anything that moves the balance
// and can be switched off for a run.
type sourceItem struct {
	id     string
	kind   projection.Kind
	label  string
	detail string
}

type forecastModel struct {
	env    *env
	width  int
	height int

	opts     planner.Options
	forecast *planner.Forecast
	items    []sourceItem
	cursor   int

	chart barchart.Model
}

func newForecastModel(e *env) forecastModel {
	return forecastModel{
		env:   e,
		chart: barchart.New(60, 12),
	}
}

func (f *forecastModel) setSize(w, h int) {
	f.width = w
	f.height = h
	f.buildChart()
}

type forecastDataMsg struct {
	opts     planner.Options
	forecast *planner.Forecast
	items    []sourceItem
	err      error
}

func (f forecastModel) refresh() tea.Cmd {
	e := f.env
	return func() tea.Msg {
		opts := e.options()
		fc, err := e.svc.Forecast(opts)
		if err != nil {
			return forecastDataMsg{err: err}
		}
		snap, err := e.store.Snapshot()
		if err != nil {
			return forecastDataMsg{err: err}
		}
		return forecastDataMsg{opts: opts, forecast: fc, items: sourceItems(snap, opts)}
	}
}

// sourceItems lists the toggleable sources of a snapshot in ledger order.
func sourceItems(snap projection.Snapshot, opts planner.Options) []sourceItem {
	var items []sourceItem
	for _, b := range snap.Budgets {
		items = append(items, sourceItem{
			id: b.ID, kind: projection.KindBudget, label: b.Category,
			detail: pausedSuffix(formatMoney(-b.Limit)+"/mo", b.Paused),
		})
	}
	if opts.ExtraWeeklyIncome != 0 {
		items = append(items, sourceItem{
			id: projection.ExtraIncomeID, kind: projection.KindExtraIncome, label: "Extra income",
			detail: formatMoney(opts.ExtraWeeklyIncome) + "/wk",
		})
	}
	for _, p := range snap.Profiles {
		detail := formatMoney(p.HourlyRate) + "/h shifts"
		if p.Employment == projection.FullTime {
			detail = fmt.Sprintf("%s %s", formatMoney(salary(p)), p.Frequency)
		}
		items = append(items, sourceItem{id: p.ID, kind: projection.KindPayroll, label: p.Name, detail: detail})
	}
	for _, s := range snap.Subscriptions {
		items = append(items, sourceItem{
			id: s.ID, kind: projection.KindSubscription, label: s.Name,
			detail: pausedSuffix(fmt.Sprintf("%s on day %d", formatMoney(-s.Price), s.BillingDay), s.Paused),
		})
	}
	for _, e := range snap.Events {
		items = append(items, sourceItem{
			id: e.ID, kind: projection.KindEvent, label: e.Name,
			detail: fmt.Sprintf("%s on %s", formatMoney(-projection.UnsettledCost(e)), e.Date),
		})
	}
	for _, g := range snap.Goals {
		if g.Saved >= g.Target {
			continue
		}
		items = append(items, sourceItem{
			id: g.ID, kind: projection.KindGoal, label: g.Name,
			detail: fmt.Sprintf("%s %s", formatMoney(-g.Installment), g.Frequency),
		})
	}
	return items
}

// salary is the full-time payout per pay cycle.
func salary(p projection.PayrollProfile) float64 {
	weekly := p.HourlyRate * p.WeeklyHours()
	switch p.Frequency {
	case projection.Biweekly:
		return weekly * 2
	case projection.Monthly:
		return weekly * 4
	}
	return weekly
}

func pausedSuffix(s string, paused bool) string {
	if paused {
		return s + " (paused)"
	}
	return s
}

func (f forecastModel) update(msg tea.Msg) (forecastModel, tea.Cmd) {
	switch msg := msg.(type) {
	case forecastDataMsg:
		if msg.err != nil {
			return f, func() tea.Msg { return errorStatus(msg.err) }
		}
		f.opts = msg.opts
		f.forecast = msg.forecast
		f.items = msg.items
		f.cursor = clampCursor(f.cursor, len(f.items))
		f.buildChart()
		return f, nil

	case dataChangedMsg:
		return f, f.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if f.cursor > 0 {
				f.cursor--
			}
		case key.Matches(msg, keys.Down):
			if f.cursor < len(f.items)-1 {
				f.cursor++
			}
		case key.Matches(msg, keys.Toggle):
			if len(f.items) == 0 {
				return f, nil
			}
			return f, f.toggle(f.items[f.cursor])
		case key.Matches(msg, keys.Longer):
			return f, f.setHorizon(f.opts.Months + 1)
		case key.Matches(msg, keys.Shorter):
			return f, f.setHorizon(f.opts.Months - 1)
		}
	}
	return f, nil
}

// toggle flips an exclusion and persists the set.
func (f forecastModel) toggle(item sourceItem) tea.Cmd {
	excluded := projection.NewIDSet(f.opts.Excluded.Slice()...)
	excluded.Toggle(item.id)
	if err := f.env.store.SetExcludedIDs(excluded); err != nil {
		return func() tea.Msg { return errorStatus(err) }
	}
	verb := "Included"
	if excluded.Has(item.id) {
		verb = "Excluded"
	}
	return changed(fmt.Sprintf("%s %s", verb, item.label))
}

func (f forecastModel) setHorizon(months int) tea.Cmd {
	if months < 0 || months > maxHorizonMonths {
		return nil
	}
	if err := f.env.store.SetSetting(store.SettingHorizonMonths, strconv.Itoa(months)); err != nil {
		return func() tea.Msg { return errorStatus(err) }
	}
	return changed(fmt.Sprintf("Horizon %d months", months))
}

// buildChart draws one bar per bucket of days. Each bar shows the lowest
// balance in its bucket, since dips are what matter.
func (f *forecastModel) buildChart() {
	chartWidth := f.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if f.height > 40 {
		chartHeight = 14
	}
	f.chart = barchart.New(chartWidth, chartHeight)

	if f.forecast == nil || len(f.forecast.Days) == 0 {
		return
	}
	days := f.forecast.Days

	n := chartWidth / 6
	if n < 1 {
		n = 1
	}
	step := (len(days) + n - 1) / n

	var bars []barchart.BarData
	for i := 0; i < len(days); i += step {
		end := min(i+step, len(days))
		low := days[i]
		for _, d := range days[i:end] {
			if d.Balance < low.Balance {
				low = d
			}
		}

		style := lipgloss.NewStyle().Foreground(colorSuccess)
		value := low.Balance
		if value < 0 {
			style = lipgloss.NewStyle().Foreground(colorError)
			value = 0
		}
		bars = append(bars, barchart.BarData{
			Label:  days[i].Date[5:],
			Values: []barchart.BarValue{{Name: low.Date, Value: value, Style: style}},
		})
	}

	f.chart.PushAll(bars)
	f.chart.Draw()
}

func (f forecastModel) view() string {
	w := f.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Forecast"), "  ",
		mutedStyle.Render(fmt.Sprintf("%d months", f.opts.Months)),
	)

	if f.forecast == nil || len(f.forecast.Days) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("Nothing to project"),
		))
	}

	fc := f.forecast
	summary := fmt.Sprintf("  Start %s   Low %s on %s   Final %s",
		formatMoney(fc.Start), moneyStyled(fc.Low.Balance), fc.Low.Date, moneyStyled(fc.Final))
	if fc.Overdue > 0 {
		summary += warningStyle.Render(fmt.Sprintf("   %d overdue shift(s) %s unsettled", fc.Overdue, formatMoney(fc.OverduePay)))
	}
	if fc.Skipped > 0 {
		summary += warningStyle.Render(fmt.Sprintf("   %d skipped", fc.Skipped))
	}

	nav := mutedStyle.Render("  ↑/↓: select  space: include/exclude  +/-: horizon  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", f.chart.View(), "", summary, "", f.renderSources(), "", nav,
		),
	)
}

func (f forecastModel) renderSources() string {
	if len(f.items) == 0 {
		return mutedStyle.Render("  No recurring sources")
	}

	rows := []string{mutedStyle.Render(fmt.Sprintf("  %-5s %-13s %-24s %s", "", "Kind", "Source", "Detail"))}
	for i, it := range f.items {
		mark := "[x]"
		style := normalItemStyle
		if f.opts.Excluded.Has(it.id) {
			mark = "[ ]"
			style = excludedStyle
		}
		if i == f.cursor {
			style = style.Inherit(selectedItemStyle)
		}
		dot := lipgloss.NewStyle().Foreground(kindColors[string(it.kind)]).Render("●")
		line := fmt.Sprintf("%s%s %s %-12s %-24s %s",
			cursorPrefix(i == f.cursor), mark, dot, it.kind, truncate(it.label, 24), it.detail)
		rows = append(rows, style.Render(line))
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
