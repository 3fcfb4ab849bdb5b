package tui

import (
	"time"

	"github.com/sadopc/fundr/internal/store"
)

// shiftClock mirrors the open shift in the store and keeps the elapsed time
// for display. The store stays the source of truth, so a clock started in an
// earlier session is picked up again by restore.
type shiftClock struct {
	store *store.Store
	now   func() time.Time

	running     bool
	shiftID     string
	profileName string
	clockIn     time.Time
	elapsed     time.Duration
}

func newShiftClock(s *store.Store) shiftClock {
	return shiftClock{store: s, now: time.Now}
}

// restore syncs with a shift left running in the database.
func (c *shiftClock) restore() error {
	sh, err := c.store.GetRunningShift()
	if err != nil {
		return err
	}
	if sh == nil {
		c.running = false
		c.shiftID = ""
		return nil
	}
	name := sh.ProfileID
	if p, err := c.store.GetProfile(sh.ProfileID); err == nil {
		name = p.Name
	}
	c.running = true
	c.shiftID = sh.ID
	c.profileName = name
	c.clockIn = *sh.ClockIn
	c.tick()
	return nil
}

func (c *shiftClock) start(profileID, profileName string) (*store.Shift, error) {
	sh, err := c.store.StartShift(profileID)
	if err != nil {
		return nil, err
	}
	c.running = true
	c.shiftID = sh.ID
	c.profileName = profileName
	c.clockIn = *sh.ClockIn
	c.elapsed = 0
	return sh, nil
}

func (c *shiftClock) stop() (*store.Shift, error) {
	if !c.running {
		return nil, nil
	}
	sh, err := c.store.StopShift(c.shiftID)
	if err != nil {
		return nil, err
	}
	c.running = false
	c.shiftID = ""
	c.elapsed = 0
	return sh, nil
}

func (c *shiftClock) tick() {
	if c.running {
		c.elapsed = c.now().Sub(c.clockIn)
	}
}

func (c shiftClock) currentElapsed() time.Duration {
	if !c.running {
		return 0
	}
	return c.now().Sub(c.clockIn)
}
