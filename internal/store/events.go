package store

import (
	"fmt"

	"github.com/sadopc/fundr/internal/projection"
)

func (s *Store) CreateEvent(name, date string) (*projection.Event, error) {
	id := newID()
	_, err := s.db.Exec(
		`INSERT INTO events (id, name, date, created_at) VALUES (?, ?, ?, ?)`,
		id, name, date, s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return s.GetEvent(id)
}

func (s *Store) GetEvent(id string) (*projection.Event, error) {
	e := &projection.Event{}
	err := s.db.QueryRow(`SELECT id, name, date FROM events WHERE id = ?`, id).Scan(&e.ID, &e.Name, &e.Date)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	items, err := s.listItems(id)
	if err != nil {
		return nil, err
	}
	e.Items = items
	return e, nil
}

// ListEvents returns every event with its items, ordered by date.
func (s *Store) ListEvents() ([]projection.Event, error) {
	rows, err := s.db.Query(`SELECT id, name, date FROM events ORDER BY date, name`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var events []projection.Event
	for rows.Next() {
		var e projection.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date); err != nil {
			rows.Close()
			return nil, err
		}
		events = append(events, e)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// Items are loaded after the event cursor is closed; the pool has a
	// single connection.
	for i := range events {
		items, err := s.listItems(events[i].ID)
		if err != nil {
			return nil, err
		}
		events[i].Items = items
	}
	return events, nil
}

func (s *Store) listItems(eventID string) ([]projection.EventItem, error) {
	rows, err := s.db.Query(
		`SELECT id, name, cost, checked FROM event_items WHERE event_id = ? ORDER BY position, rowid`, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list event items: %w", err)
	}
	defer rows.Close()

	items := []projection.EventItem{}
	for rows.Next() {
		var it projection.EventItem
		var checked int
		if err := rows.Scan(&it.ID, &it.Name, &it.Cost, &checked); err != nil {
			return nil, err
		}
		it.Checked = checked == 1
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) DeleteEvent(id string) error {
	res, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return affected(res, "delete event", id)
}

func (s *Store) AddEventItem(eventID, name string, cost float64) (*projection.EventItem, error) {
	id := newID()
	_, err := s.db.Exec(
		`INSERT INTO event_items (id, event_id, name, cost, position)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM event_items WHERE event_id = ?))`,
		id, eventID, name, cost, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event item: %w", err)
	}
	return &projection.EventItem{ID: id, Name: name, Cost: cost}, nil
}

// SetItemChecked marks an item as bought. Checked items no longer count
// towards the event's projected cost.
func (s *Store) SetItemChecked(id string, checked bool) error {
	res, err := s.db.Exec(`UPDATE event_items SET checked = ? WHERE id = ?`, boolInt(checked), id)
	if err != nil {
		return fmt.Errorf("check item %s: %w", id, err)
	}
	return affected(res, "check item", id)
}

func (s *Store) DeleteEventItem(id string) error {
	res, err := s.db.Exec(`DELETE FROM event_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event item %s: %w", id, err)
	}
	return affected(res, "delete event item", id)
}
