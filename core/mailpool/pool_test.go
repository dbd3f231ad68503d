package mailpool

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/automail/core/events"
	"github.com/kilianp07/automail/core/model"
)

// fakeCarrier takes up to capacity items and fails on weights above limit.
type fakeCarrier struct {
	id         string
	capacity   int
	limit      int
	loaded     []model.MailItem
	dispatched int
}

func (f *fakeCarrier) ID() string { return f.id }

func (f *fakeCarrier) Load(pending []model.MailItem) (int, error) {
	n := 0
	for n < f.capacity && n < len(pending) {
		if f.limit > 0 && pending[n].Weight > f.limit {
			return n, errors.New("too heavy")
		}
		f.loaded = append(f.loaded, pending[n])
		n++
	}
	return n, nil
}

func (f *fakeCarrier) Dispatch() { f.dispatched++ }

type recorder struct{ events []events.Event }

func (r *recorder) Publish(e events.Event) { r.events = append(r.events, e) }

func mail(id string, floor, weight int) model.MailItem {
	return model.NewMailItem(id, floor, 1, weight)
}

func floors(items []model.MailItem) []int {
	res := make([]int, len(items))
	for i, it := range items {
		res[i] = it.DestinationFloor
	}
	return res
}

func TestAddToPoolSortsByFloorDescending(t *testing.T) {
	p := New()
	p.AddToPool(mail("a", 3, 10))
	p.AddToPool(mail("b", 9, 10))
	p.AddToPool(mail("c", 3, 10))
	p.AddToPool(mail("d", 5, 10))
	p.AddToPool(mail("e", 9, 10))

	pending := p.Pending()
	assert.Equal(t, []int{9, 9, 5, 3, 3}, floors(pending))
	assert.Equal(t, "b", pending[0].ID)
	assert.Equal(t, "e", pending[1].ID)
	assert.Equal(t, "a", pending[3].ID)
	assert.Equal(t, "c", pending[4].ID)
	assert.Equal(t, 5, p.PendingCount())
}

func TestRegisterWaitingIgnoresDuplicates(t *testing.T) {
	p := New()
	a := &fakeCarrier{id: "R0", capacity: 2}
	b := &fakeCarrier{id: "F1", capacity: 1}
	p.RegisterWaiting(a)
	p.RegisterWaiting(b)
	p.RegisterWaiting(a)
	assert.Equal(t, []string{"R0", "F1"}, p.WaitingIDs())
	assert.Equal(t, 2, p.WaitingCount())
}

func TestLoadItemsToRobotServesRobotsInArrivalOrder(t *testing.T) {
	rec := &recorder{}
	p := New(WithEvents(rec), WithClock(model.StaticClock(12)))
	for i, f := range []int{2, 8, 5, 7} {
		p.AddToPool(mail(fmt.Sprint(i), f, 10))
	}
	first := &fakeCarrier{id: "R0", capacity: 2}
	second := &fakeCarrier{id: "B1", capacity: 5}
	p.RegisterWaiting(first)
	p.RegisterWaiting(second)

	require.NoError(t, p.LoadItemsToRobot())
	assert.Equal(t, []int{8, 7}, floors(first.loaded))
	assert.Equal(t, []int{5, 2}, floors(second.loaded))
	assert.Equal(t, 1, first.dispatched)
	assert.Equal(t, 1, second.dispatched)
	assert.Zero(t, p.PendingCount())
	assert.Zero(t, p.WaitingCount())

	require.Len(t, rec.events, 2)
	ev := rec.events[0].(events.AllocationEvent)
	assert.Equal(t, 12, ev.Tick)
	assert.Equal(t, "R0", ev.RobotID)
	assert.Equal(t, []string{"1", "3"}, ev.ItemIDs)
}

func TestLoadItemsToRobotKeepsRobotsWaitingWithoutMail(t *testing.T) {
	p := New()
	p.AddToPool(mail("x", 4, 10))
	a := &fakeCarrier{id: "R0", capacity: 2}
	b := &fakeCarrier{id: "R1", capacity: 2}
	p.RegisterWaiting(a)
	p.RegisterWaiting(b)

	require.NoError(t, p.LoadItemsToRobot())
	assert.Equal(t, 1, a.dispatched)
	assert.Zero(t, b.dispatched)
	assert.Equal(t, []string{"R1"}, p.WaitingIDs())

	require.NoError(t, p.LoadItemsToRobot())
	assert.Zero(t, b.dispatched)
}

func TestLoadItemsToRobotAbortsOnLoadError(t *testing.T) {
	p := New()
	p.AddToPool(mail("ok", 9, 10))
	p.AddToPool(mail("heavy", 6, 5000))
	p.AddToPool(mail("later", 2, 10))
	a := &fakeCarrier{id: "R0", capacity: 2, limit: 2000}
	b := &fakeCarrier{id: "R1", capacity: 2, limit: 2000}
	p.RegisterWaiting(a)
	p.RegisterWaiting(b)

	err := p.LoadItemsToRobot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "R0")

	// the item taken before the failure left the pool, the overweight one stays
	assert.Equal(t, []string{"heavy", "later"}, []string{p.Pending()[0].ID, p.Pending()[1].ID})
	assert.Zero(t, a.dispatched)
	assert.Zero(t, b.dispatched)
	assert.Empty(t, b.loaded)
	assert.Equal(t, []string{"R0", "R1"}, p.WaitingIDs())
}

func TestPendingReturnsCopy(t *testing.T) {
	p := New()
	p.AddToPool(mail("a", 1, 10))
	got := p.Pending()
	got[0].DestinationFloor = 99
	assert.Equal(t, 1, p.Pending()[0].DestinationFloor)
}
