package center

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowAppendsUnreadEntry(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := New(WithClock(func() time.Time { return fixed }))

	e := c.Show(KindInfo, "Leave", "Request approved")

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, KindInfo, e.Kind)
	assert.Equal(t, "Leave", e.Title)
	assert.Equal(t, "Request approved", e.Message)
	assert.False(t, e.Read)
	assert.Equal(t, fixed, e.CreatedAt)
	assert.Equal(t, 1, c.UnreadCount())
	require.Len(t, c.Entries(), 1)
}

func TestShowAssignsUniqueIDs(t *testing.T) {
	c := New()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		e := c.Info("t", "m")
		require.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestEntriesPreserveCallOrder(t *testing.T) {
	c := New()
	c.Success("a", "")
	c.Error("b", "")
	c.Warning("c", "")

	entries := c.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{entries[0].Title, entries[1].Title, entries[2].Title})
	assert.Equal(t, KindSuccess, entries[0].Kind)
	assert.Equal(t, KindError, entries[1].Kind)
	assert.Equal(t, KindWarning, entries[2].Kind)
}

func TestMarkReadUnknownIDIsNoop(t *testing.T) {
	c := New()
	c.Info("a", "")
	c.MarkRead("does-not-exist")
	assert.Equal(t, 1, c.UnreadCount())
}

func TestMarkReadTwiceCountsOnce(t *testing.T) {
	c := New()
	e := c.Info("a", "")
	c.Info("b", "")
	c.MarkRead(e.ID)
	c.MarkRead(e.ID)
	assert.Equal(t, 1, c.UnreadCount())
}

func TestUnreadCountAfterShowAndMarkRead(t *testing.T) {
	for n := 0; n <= 12; n++ {
		for m := 0; m <= n; m++ {
			t.Run(fmt.Sprintf("N=%d,M=%d", n, m), func(t *testing.T) {
				c := New()
				ids := make([]string, 0, n)
				for i := 0; i < n; i++ {
					ids = append(ids, c.Info(fmt.Sprintf("t%d", i), "").ID)
				}
				for i := 0; i < m; i++ {
					c.MarkRead(ids[n-1-i])
				}
				assert.Equal(t, n-m, c.UnreadCount())
				assert.Equal(t, Recount(c.Entries()), c.UnreadCount())
			})
		}
	}
}

func TestUnreadCountNeverDrifts(t *testing.T) {
	c := New(WithLimit(5))
	var ids []string

	check := func(step string) {
		t.Helper()
		require.Equal(t, Recount(c.Entries()), c.UnreadCount(), "drift after %s", step)
	}

	for i := 0; i < 40; i++ {
		switch i % 6 {
		case 0, 1, 2:
			ids = append(ids, c.Show(KindInfo, "t", "m").ID)
			check("show")
		case 3:
			c.MarkRead(ids[len(ids)/2])
			check("mark read")
		case 4:
			c.Remove(ids[0])
			ids = ids[1:]
			check("remove")
		case 5:
			if i%12 == 5 {
				c.MarkAllRead()
				check("mark all read")
			} else {
				c.MarkRead(ids[len(ids)-1])
				check("mark last read")
			}
		}
	}

	c.Clear()
	check("clear")
	assert.Equal(t, 0, c.UnreadCount())
}

func TestLimitEvictsOldest(t *testing.T) {
	c := New(WithLimit(3))
	first := c.Info("1", "")
	c.Info("2", "")
	c.Info("3", "")
	c.MarkRead(first.ID)
	c.Info("4", "")

	entries := c.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "2", entries[0].Title)
	assert.Equal(t, "4", entries[2].Title)
	assert.Equal(t, 3, c.UnreadCount())
}

func TestClearResetsCollection(t *testing.T) {
	c := New()
	c.Info("a", "")
	c.Error("b", "")
	c.Clear()
	assert.Empty(t, c.Entries())
	assert.Equal(t, 0, c.UnreadCount())
}

func TestNewCenterIsEmpty(t *testing.T) {
	c := New()
	assert.Empty(t, c.Entries())
	assert.Equal(t, 0, c.UnreadCount())
}

func TestConcurrentShowLosesNothing(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Info("t", "m")
			}
		}()
	}
	wg.Wait()

	assert.Len(t, c.Entries(), 800)
	assert.Equal(t, 800, c.UnreadCount())
}

func TestSequentialCallersKeepOrder(t *testing.T) {
	c := New()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			c.Info(fmt.Sprintf("%02d", i), "")
		}
		close(done)
	}()
	<-done

	entries := c.Entries()
	for i, e := range entries {
		assert.Equal(t, fmt.Sprintf("%02d", i), e.Title)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	c := New()
	events, cancel := c.Subscribe(8)
	defer cancel()

	e := c.Success("saved", "")
	c.MarkRead(e.ID)

	ev := <-events
	assert.Equal(t, EventAdded, ev.Type)
	assert.Equal(t, e.ID, ev.Entry.ID)
	assert.Equal(t, 1, ev.Unread)

	ev = <-events
	assert.Equal(t, EventRead, ev.Type)
	assert.Equal(t, 0, ev.Unread)
}

func TestSubscribeFullBufferDoesNotBlock(t *testing.T) {
	c := New()
	_, cancel := c.Subscribe(1)
	defer cancel()

	for i := 0; i < 10; i++ {
		c.Info("t", "m")
	}
	assert.Equal(t, 10, c.UnreadCount())
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	c := New()
	events, cancel := c.Subscribe(1)
	cancel()
	cancel()

	_, ok := <-events
	assert.False(t, ok)

	// Publishing after unsubscribe must not panic.
	c.Info("t", "m")
}
