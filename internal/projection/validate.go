package projection

import "fmt"

// Issue describes an entity that a projection run will skip.
type Issue struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %q (%s): %s", i.Entity, i.Name, i.ID, i.Reason)
}

// Validate lists the entities of snap that Calculate silently ignores, so a
// host can surface them. It never changes the projection itself.
func Validate(snap Snapshot) []Issue {
	var issues []Issue
	add := func(entity, id, name, reason string) {
		issues = append(issues, Issue{Entity: entity, ID: id, Name: name, Reason: reason})
	}

	for _, p := range snap.Profiles {
		if p.PayDayAnchor != "" {
			if _, ok := ParseDate(p.PayDayAnchor); !ok {
				add("profile", p.ID, p.Name, fmt.Sprintf("unparseable pay day anchor %q", p.PayDayAnchor))
			}
		}
		if p.Frequency == FrequencyUnknown {
			add("profile", p.ID, p.Name, "unknown pay frequency")
		}
	}

	for _, sh := range snap.Shifts {
		if _, ok := ParseDate(sh.Date); !ok {
			add("shift", sh.ID, sh.Date, fmt.Sprintf("unparseable work date %q", sh.Date))
		}
		if sh.PaymentDate != "" {
			if _, ok := ParseDate(sh.PaymentDate); !ok {
				add("shift", sh.ID, sh.Date, fmt.Sprintf("unparseable payment date %q", sh.PaymentDate))
			}
		}
	}

	for _, s := range snap.Subscriptions {
		if s.BillingDay < 1 || s.BillingDay > 31 {
			add("subscription", s.ID, s.Name, fmt.Sprintf("billing day %d outside 1-31", s.BillingDay))
		}
	}

	for _, g := range snap.Goals {
		if g.Saved >= g.Target {
			continue
		}
		if g.Installment <= 0 {
			add("goal", g.ID, g.Name, "no installment set")
			continue
		}
		switch g.Frequency {
		case Once:
			if _, ok := ParseDate(g.Deadline); !ok {
				add("goal", g.ID, g.Name, "missing or unparseable deadline")
			}
		case Weekly, Biweekly, Monthly:
			if _, ok := ParseDate(g.StartDate); !ok {
				add("goal", g.ID, g.Name, "missing or unparseable start date")
			}
		case Immediate, FrequencyUnknown:
			add("goal", g.ID, g.Name, fmt.Sprintf("frequency %q has no installment schedule", g.Frequency))
		}
	}

	for _, e := range snap.Events {
		if _, ok := ParseDate(e.Date); !ok {
			add("event", e.ID, e.Name, fmt.Sprintf("unparseable date %q", e.Date))
		}
	}
	return issues
}
