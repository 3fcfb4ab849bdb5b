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

type settingsModel struct {
	env    *env
	width  int
	height int

	settings   []store.Setting
	accounts   []projection.Account
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	horizonMonths *string
	extraIncome   *string
	payoutAccount *string
}

func newSettingsModel(e *env) settingsModel {
	hm, ei, pa := "", "", ""
	return settingsModel{
		env:           e,
		horizonMonths: &hm,
		extraIncome:   &ei,
		payoutAccount: &pa,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	accounts []projection.Account
	err      error
}

func (s settingsModel) refresh() tea.Cmd {
	st := s.env.store
	return func() tea.Msg {
		settings, err := st.GetAllSettings()
		if err != nil {
			return settingsDataMsg{err: err}
		}
		accounts, err := st.ListAccounts()
		return settingsDataMsg{settings: settings, accounts: accounts, err: err}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		if msg.err != nil {
			return s, func() tea.Msg { return errorStatus(msg.err) }
		}
		s.settings = msg.settings
		s.accounts = msg.accounts
		return s, nil

	case dataChangedMsg:
		return s, s.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	opts := s.env.options()
	*s.horizonMonths = strconv.Itoa(opts.Months)
	*s.extraIncome = strconv.FormatFloat(opts.ExtraWeeklyIncome, 'f', -1, 64)
	*s.payoutAccount = s.getVal(store.SettingPayoutAccount, "")

	accountOptions := []huh.Option[string]{huh.NewOption("None (mark paid only)", "")}
	for _, a := range s.accounts {
		accountOptions = append(accountOptions, huh.NewOption(a.Name, a.ID))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Forecast horizon (months)").Value(s.horizonMonths).Validate(validateMonths),
			huh.NewInput().Title("Extra weekly income").Value(s.extraIncome).Validate(validateNonNegative),
		).Title("Forecast"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Credit settled pay to").
				Options(accountOptions...).
				Value(s.payoutAccount),
		).Title("Payroll"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateMonths(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 || n > maxHorizonMonths {
		return fmt.Errorf("0-%d months", maxHorizonMonths)
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, func() tea.Msg { return errorStatus(err) }
		}
		return s, changed("Settings saved")
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	extra, _ := parseAmount(*s.extraIncome)
	values := []store.Setting{
		{Key: store.SettingHorizonMonths, Value: strings.TrimSpace(*s.horizonMonths)},
		{Key: store.SettingExtraWeeklyIncome, Value: strconv.FormatFloat(extra, 'f', -1, 64)},
		{Key: store.SettingPayoutAccount, Value: *s.payoutAccount},
	}
	for _, v := range values {
		if err := s.env.store.SetSetting(v.Key, v.Value); err != nil {
			return fmt.Errorf("save %s: %w", v.Key, err)
		}
	}
	s.env.log.WithField("horizon", values[0].Value).Info("settings saved")
	return nil
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.env.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(s.formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (s settingsModel) formatSettingValue(k, v string) string {
	switch k {
	case store.SettingHorizonMonths:
		return v + " months"
	case store.SettingExtraWeeklyIncome:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return formatMoney(f) + " / week"
		}
	case store.SettingExcludedIDs:
		n := len(projection.NewIDSet(strings.Split(v, ",")...))
		if n == 0 {
			return "none"
		}
		return fmt.Sprintf("%d source(s)", n)
	case store.SettingPayoutAccount:
		if v == "" {
			return "none"
		}
		for _, a := range s.accounts {
			if a.ID == v {
				return a.Name
			}
		}
		return v + " (missing)"
	}
	return v
}
