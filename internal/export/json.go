package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/fundr/internal/projection"
)

type jsonExport struct {
	ExportedAt string    `json:"exported_at"`
	Count      int       `json:"count"`
	Start      string    `json:"start,omitempty"`
	End        string    `json:"end,omitempty"`
	Days       []jsonDay `json:"days"`
}

type jsonDay struct {
	Date    string      `json:"date"`
	Balance float64     `json:"balance"`
	Net     string      `json:"net"`
	Entries []jsonEntry `json:"entries,omitempty"`
}

type jsonEntry struct {
	Kind     string `json:"kind"`
	SourceID string `json:"source_id,omitempty"`
	Label    string `json:"label"`
	Amount   string `json:"amount"`
}

func ToJSON(days []projection.Day, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(days),
	}
	if len(days) > 0 {
		export.Start = days[0].Date
		export.End = days[len(days)-1].Date
	}

	for _, d := range days {
		jd := jsonDay{Date: d.Date, Balance: d.Balance, Net: formatMoney(d.Net())}
		for _, e := range d.Log {
			jd.Entries = append(jd.Entries, jsonEntry{
				Kind:     string(e.Kind),
				SourceID: e.SourceID,
				Label:    e.Label,
				Amount:   formatMoney(e.Amount),
			})
		}
		export.Days = append(export.Days, jd)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
