package projection

import (
	"fmt"
	"strings"
)

// Frequency is the recurrence of a pay cycle or goal installment.
type Frequency int

const (
	FrequencyUnknown Frequency = iota
	Weekly
	Biweekly
	Monthly
	Once
	Immediate
)

var frequencyNames = map[Frequency]string{
	FrequencyUnknown: "",
	Weekly:           "weekly",
	Biweekly:         "biweekly",
	Monthly:          "monthly",
	Once:             "once",
	Immediate:        "immediate",
}

// ParseFrequency accepts the lowercase names used in storage and on the
// command line. "fortnightly" is an alias for biweekly.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly":
		return Weekly, nil
	case "biweekly", "fortnightly":
		return Biweekly, nil
	case "monthly":
		return Monthly, nil
	case "once":
		return Once, nil
	case "immediate":
		return Immediate, nil
	}
	return FrequencyUnknown, fmt.Errorf("unknown frequency %q", s)
}

func (f Frequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("frequency(%d)", int(f))
}

// CycleDays returns the cycle length used for anchor arithmetic and goal
// estimates. Once and Immediate have no cycle.
func (f Frequency) CycleDays() int {
	switch f {
	case Weekly:
		return 7
	case Biweekly:
		return 14
	case Monthly:
		return 30
	case Once, Immediate, FrequencyUnknown:
		return 0
	}
	return 0
}

func (f Frequency) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText maps unrecognised names to FrequencyUnknown so one bad row
// does not fail a whole decode.
func (f *Frequency) UnmarshalText(b []byte) error {
	parsed, err := ParseFrequency(string(b))
	if err != nil {
		*f = FrequencyUnknown
		return nil
	}
	*f = parsed
	return nil
}
