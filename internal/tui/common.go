package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/fundr/internal/cli"
	"github.com/sadopc/fundr/internal/projection"
	"github.com/sadopc/fundr/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewForecast
	viewIncome
	viewGoals
	viewPlans
	viewSettings
)

var viewNames = []string{"Dashboard", "Forecast", "Income", "Goals", "Plans", "Settings"}

// --- Messages ---

type shiftStartedMsg struct {
	shift *store.Shift
}

type shiftStoppedMsg struct {
	shift *store.Shift
}

// dataChangedMsg tells every view that stored data moved under it, so
// cached projections must be recomputed. A non-empty status is shown in
// the footer.
type dataChangedMsg struct {
	status string
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

func errorStatus(err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
}

func changed(status string) tea.Cmd {
	return func() tea.Msg { return dataChangedMsg{status: status} }
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatMoney(v float64) string {
	return cli.FormatMoney(v)
}

func formatSignedMoney(v float64) string {
	return cli.FormatSigned(v)
}

// moneyStyled colours negative amounts.
func moneyStyled(v float64) string {
	if v < 0 {
		return negativeStyle.Render(cli.FormatMoney(v))
	}
	return cli.FormatMoney(v)
}

// --- Form parsing ---

func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

func validateAmount(s string) error {
	_, err := parseAmount(s)
	return err
}

func validateNonNegative(s string) error {
	v, err := parseAmount(s)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validatePositive(s string) error {
	v, err := parseAmount(s)
	if err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

// validateDate accepts YYYY-MM-DD, or empty when optional is true.
func validateDate(optional bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" && optional {
			return nil
		}
		if _, ok := projection.ParseDate(s); !ok {
			return fmt.Errorf("use YYYY-MM-DD")
		}
		return nil
	}
}

func validateDay(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 31 {
		return fmt.Errorf("day must be 1-31")
	}
	return nil
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func cursorPrefix(selected bool) string {
	if selected {
		return "> "
	}
	return "  "
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}
