package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/sadopc/fundr/internal/projection"
)

// ToCSV writes one row per ledger entry. A day without entries still gets a
// row so the balance curve has no gaps.
func ToCSV(days []projection.Day, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Date", "Balance", "Kind", "Label", "Amount"}); err != nil {
		return err
	}

	for _, d := range days {
		balance := formatMoney(d.Balance)
		if len(d.Log) == 0 {
			if err := w.Write([]string{d.Date, balance, "", "", ""}); err != nil {
				return err
			}
			continue
		}
		for _, e := range d.Log {
			row := []string{d.Date, balance, string(e.Kind), e.Label, formatMoney(e.Amount)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
