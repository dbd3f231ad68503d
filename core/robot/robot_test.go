package robot

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/automail/core/delivery"
	"github.com/kilianp07/automail/core/events"
	"github.com/kilianp07/automail/core/fee"
	"github.com/kilianp07/automail/core/mailpool"
	"github.com/kilianp07/automail/core/model"
)

type fakeRegistrar struct {
	calls map[string]int
}

func (f *fakeRegistrar) RegisterWaiting(c mailpool.Carrier) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[c.ID()]++
}

type recordingSink struct {
	records []delivery.Record
	err     error
}

func (s *recordingSink) Deliver(_ context.Context, rec delivery.Record) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) { p.events = append(p.events, e) }

type harness struct {
	reg  *fakeRegistrar
	sink *recordingSink
	env  Env
}

func newHarness(mailroom int) *harness {
	h := &harness{reg: &fakeRegistrar{}, sink: &recordingSink{}}
	h.env = Env{
		Building: model.FixedBuilding{Floors: 20, Mailroom: mailroom},
		Pool:     h.reg,
		Sink:     h.sink,
	}
	return h
}

func items(floors ...int) []model.MailItem {
	res := make([]model.MailItem, len(floors))
	for i, f := range floors {
		res[i] = model.NewMailItem(fmt.Sprintf("m%d", i), f, 1, 100)
	}
	return res
}

func operate(t *testing.T, r *Robot, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, r.Operate(context.Background()))
	}
}

func TestVariantConstants(t *testing.T) {
	checks := []struct {
		v        Variant
		prefix   string
		capacity int
		tube     int
		speed    int
		rate     float64
		hand     bool
	}{
		{Regular, "R", 2, 1, 1, 0.025, true},
		{Fast, "F", 1, 0, 3, 0.05, true},
		{Bulk, "B", 5, 5, 1, 0.01, false},
	}
	for _, c := range checks {
		t.Run(c.v.String(), func(t *testing.T) {
			assert.Equal(t, c.prefix, c.v.Prefix())
			assert.Equal(t, c.capacity, c.v.Capacity())
			assert.Equal(t, c.tube, c.v.TubeCapacity())
			assert.Equal(t, c.speed, c.v.Speed())
			assert.InDelta(t, c.rate, c.v.BaseRate(), 1e-12)
			assert.Equal(t, c.hand, c.v.HasHand())
			parsed, err := ParseVariant(c.v.String())
			require.NoError(t, err)
			assert.Equal(t, c.v, parsed)
		})
	}
	_, err := ParseVariant("hover")
	assert.Error(t, err)
}

func TestNewRobotStartsReturningAtMailroom(t *testing.T) {
	h := newHarness(2)
	g := NewGroup(Bulk)
	r := New(7, g, h.env)
	assert.Equal(t, "B7", r.ID())
	assert.Equal(t, Returning, r.State())
	assert.Equal(t, 2, r.CurrentFloor())
	assert.True(t, r.IsEmpty())
	assert.Equal(t, 1, g.Count())
}

func TestReturningCascadesIntoDeliveringSameTick(t *testing.T) {
	h := newHarness(0)
	r := New(0, NewGroup(Regular), h.env)
	_, err := r.Load(items(4))
	require.NoError(t, err)
	r.Dispatch()

	operate(t, r, 1)
	assert.Equal(t, Delivering, r.State())
	assert.Equal(t, 4, r.DestinationFloor())
	assert.False(t, r.DispatchRequested())
	assert.Equal(t, 1, h.reg.calls["R0"])
}

func TestRegularDeliversHandThenTube(t *testing.T) {
	h := newHarness(0)
	r := New(0, NewGroup(Regular), h.env)
	operate(t, r, 1)
	require.Equal(t, Waiting, r.State())

	n, err := r.Load(items(5, 3))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	hand, ok := r.Hand()
	require.True(t, ok)
	assert.Equal(t, 5, hand.DestinationFloor)
	require.Len(t, r.Tube(), 1)
	assert.Equal(t, 3, r.Tube()[0].DestinationFloor)

	r.Dispatch()
	operate(t, r, 1)
	require.Equal(t, Delivering, r.State())
	assert.Equal(t, 5, r.DestinationFloor())

	operate(t, r, 5)
	assert.Equal(t, 5, r.CurrentFloor())
	assert.Empty(t, h.sink.records)

	operate(t, r, 1)
	require.Len(t, h.sink.records, 1)
	assert.Equal(t, 5, h.sink.records[0].Item.DestinationFloor)
	assert.Equal(t, Delivering, r.State())
	assert.Equal(t, 3, r.DestinationFloor())
	assert.Empty(t, r.Tube())

	operate(t, r, 1)
	assert.Equal(t, 4, r.CurrentFloor())
	operate(t, r, 2)
	require.Len(t, h.sink.records, 2)
	assert.Equal(t, Returning, r.State())
	assert.Equal(t, 2, r.DeliveryCounter())
	assert.True(t, r.IsEmpty())
}

func TestFastMovesThreeFloorsWithoutOvershooting(t *testing.T) {
	h := newHarness(0)
	r := New(1, NewGroup(Fast), h.env)
	operate(t, r, 1)
	n, err := r.Load(items(10, 8))
	require.NoError(t, err)
	assert.Equal(t, 1, n, "fast robots carry a single item")
	r.Dispatch()
	operate(t, r, 1)
	require.Equal(t, Delivering, r.State())

	var floors []int
	for i := 0; i < 4; i++ {
		operate(t, r, 1)
		floors = append(floors, r.CurrentFloor())
	}
	assert.Equal(t, []int{3, 6, 9, 10}, floors)
	assert.Empty(t, h.sink.records)

	operate(t, r, 1)
	assert.Equal(t, 10, r.CurrentFloor())
	require.Len(t, h.sink.records, 1)
	assert.Equal(t, Returning, r.State())

	// heading back down also jumps the last stretch
	var down []int
	for i := 0; i < 4; i++ {
		operate(t, r, 1)
		down = append(down, r.CurrentFloor())
	}
	assert.Equal(t, []int{7, 4, 1, 0}, down)
}

func loadedBulk(t *testing.T, h *harness, floors ...int) *Robot {
	t.Helper()
	r := New(2, NewGroup(Bulk), h.env)
	operate(t, r, 1)
	n, err := r.Load(items(floors...))
	require.NoError(t, err)
	require.Equal(t, len(floors), n)
	r.Dispatch()
	operate(t, r, 1)
	require.Equal(t, Delivering, r.State())
	return r
}

func TestBulkDeliversFiveItems(t *testing.T) {
	h := newHarness(0)
	r := loadedBulk(t, h, 2, 2, 2, 2, 2)
	operate(t, r, 2)
	require.Equal(t, 2, r.CurrentFloor())
	for i := 1; i <= 5; i++ {
		operate(t, r, 1)
		assert.Equal(t, i, r.DeliveryCounter())
	}
	assert.Equal(t, Returning, r.State())
	assert.Len(t, h.sink.records, 5)
}

func TestBulkSixthDeliveryIsFatal(t *testing.T) {
	h := newHarness(0)
	r := loadedBulk(t, h, 2, 2, 2, 2, 2)
	operate(t, r, 2)
	operate(t, r, 4)
	require.Equal(t, 4, r.DeliveryCounter())

	// an item slipped in mid-cycle, which the pool never does
	r.tube = append(r.tube, model.NewMailItem("extra", 2, 1, 10))
	operate(t, r, 1)
	require.Equal(t, 5, r.DeliveryCounter())
	require.Equal(t, Delivering, r.State())

	err := r.Operate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExcessiveDelivery)
}

func TestBulkDeliversLastLoadedFirst(t *testing.T) {
	h := newHarness(0)
	r := loadedBulk(t, h, 9, 6, 4)
	assert.Equal(t, 4, r.DestinationFloor())
	tube := r.Tube()
	require.Len(t, tube, 3)
	assert.Equal(t, []int{4, 6, 9}, []int{tube[0].DestinationFloor, tube[1].DestinationFloor, tube[2].DestinationFloor})

	operate(t, r, 5)
	require.Len(t, h.sink.records, 1)
	assert.Equal(t, 4, h.sink.records[0].Item.DestinationFloor)
	assert.Equal(t, 6, r.DestinationFloor())
	assert.Len(t, r.Tube(), 2, "bulk items stay in the tube until delivered")
}

func TestLoadRejectsOverweight(t *testing.T) {
	heavy := model.NewMailItem("heavy", 3, 1, model.MaxItemWeight+1)
	light := model.NewMailItem("light", 3, 1, model.MaxItemWeight)
	for _, v := range Variants {
		t.Run(v.String(), func(t *testing.T) {
			r := New(0, NewGroup(v), newHarness(0).env)
			n, err := r.Load([]model.MailItem{heavy, light})
			assert.ErrorIs(t, err, ErrItemTooHeavy)
			assert.Zero(t, n)
			assert.True(t, r.IsEmpty())
		})
	}
}

func TestRegularKeepsItemsTakenBeforeOverweight(t *testing.T) {
	r := New(0, NewGroup(Regular), newHarness(0).env)
	pending := []model.MailItem{
		model.NewMailItem("ok", 6, 1, 500),
		model.NewMailItem("heavy", 5, 1, 2500),
	}
	n, err := r.Load(pending)
	assert.ErrorIs(t, err, ErrItemTooHeavy)
	assert.Equal(t, 1, n)
	hand, ok := r.Hand()
	require.True(t, ok)
	assert.Equal(t, "ok", hand.ID)
	assert.Empty(t, r.Tube())
}

func TestBulkRejectsWholeBatch(t *testing.T) {
	r := New(0, NewGroup(Bulk), newHarness(0).env)
	pending := items(9, 8, 7)
	pending[2].Weight = 3000
	n, err := r.Load(pending)
	assert.ErrorIs(t, err, ErrItemTooHeavy)
	assert.Zero(t, n)
	assert.True(t, r.IsEmpty())
}

func TestBulkIgnoresItemsBeyondCapacity(t *testing.T) {
	r := New(0, NewGroup(Bulk), newHarness(0).env)
	pending := items(9, 8, 7, 6, 5, 4)
	pending[5].Weight = 3000
	n, err := r.Load(pending)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestFeeChargedOnDelivery(t *testing.T) {
	h := newHarness(0)
	h.env.Fees = fee.NewCalculator(fee.FixedFee(2.00))
	g := NewGroup(Regular)
	r := New(0, g, h.env)
	_, err := r.Load(items(1))
	require.NoError(t, err)
	r.Dispatch()
	operate(t, r, 2)
	require.Equal(t, 1, r.CurrentFloor())

	g.operatingTime = 4
	operate(t, r, 1)
	require.Len(t, h.sink.records, 1)
	b := h.sink.records[0].Fee
	require.NotNil(t, b)
	assert.InDelta(t, 2.00, b.ServiceFee, 1e-9)
	assert.InDelta(t, 4.0, b.AverageOperatingTime, 1e-9)
	assert.InDelta(t, 0.10, b.MaintenanceCost, 1e-9)
	assert.InDelta(t, 2.10, b.TotalCost, 1e-9)
	assert.Equal(t, "regular", h.sink.records[0].Variant)
}

func TestNoFeeWhenChargingDisabled(t *testing.T) {
	h := newHarness(0)
	r := New(0, NewGroup(Fast), h.env)
	_, err := r.Load(items(0))
	require.NoError(t, err)
	r.Dispatch()
	operate(t, r, 2)
	require.Len(t, h.sink.records, 1)
	assert.Nil(t, h.sink.records[0].Fee)
}

func TestOperatingTimeSharedAcrossGroup(t *testing.T) {
	h := newHarness(0)
	g := NewGroup(Regular)
	a := New(0, g, h.env)
	b := New(1, g, h.env)

	// both idle at the mailroom: waiting does not count
	operate(t, a, 3)
	operate(t, b, 3)
	assert.Zero(t, g.TotalOperatingTime())

	_, err := a.Load(items(3))
	require.NoError(t, err)
	a.Dispatch()
	operate(t, a, 1) // WAITING -> DELIVERING counts
	assert.Equal(t, 1, g.TotalOperatingTime())
	operate(t, a, 3) // moving up
	operate(t, a, 1) // delivery -> RETURNING
	assert.Equal(t, 5, g.TotalOperatingTime())
	assert.InDelta(t, 2.5, g.AverageOperatingTime(), 1e-9)

	other := NewGroup(Bulk)
	assert.Zero(t, other.TotalOperatingTime())
	assert.Zero(t, other.AverageOperatingTime())
}

func TestRegistersOnlyAtMailroomOncePerReturn(t *testing.T) {
	h := newHarness(0)
	r := New(0, NewGroup(Regular), h.env)
	operate(t, r, 3)
	assert.Equal(t, 1, h.reg.calls["R0"], "waiting robots do not register again")

	_, err := r.Load(items(2))
	require.NoError(t, err)
	r.Dispatch()
	operate(t, r, 4) // leave, climb to 2, deliver
	require.Equal(t, Returning, r.State())
	operate(t, r, 1)
	assert.Equal(t, 1, r.CurrentFloor())
	assert.Equal(t, 1, h.reg.calls["R0"], "no registration away from the mailroom")

	// arriving uses up the tick; registration happens on the next one
	operate(t, r, 1)
	assert.Equal(t, 0, r.CurrentFloor())
	assert.Equal(t, Returning, r.State())
	assert.Equal(t, 1, h.reg.calls["R0"])

	operate(t, r, 1)
	assert.Equal(t, Waiting, r.State())
	assert.Equal(t, 2, h.reg.calls["R0"])
}

func TestWaitingWithoutDispatchStaysIdle(t *testing.T) {
	h := newHarness(0)
	r := New(0, NewGroup(Regular), h.env)
	_, err := r.Load(items(3))
	require.NoError(t, err)
	operate(t, r, 3)
	assert.Equal(t, Waiting, r.State())
	assert.Equal(t, 0, r.CurrentFloor())
}

func TestSinkErrorAbortsOperate(t *testing.T) {
	h := newHarness(0)
	boom := errors.New("already delivered")
	h.sink.err = boom
	r := New(0, NewGroup(Regular), h.env)
	_, err := r.Load(items(0))
	require.NoError(t, err)
	r.Dispatch()
	operate(t, r, 1)
	err = r.Operate(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestStateEventsPublished(t *testing.T) {
	h := newHarness(0)
	pub := &recordingPublisher{}
	h.env.Events = pub
	r := New(0, NewGroup(Fast), h.env)
	_, err := r.Load(items(0))
	require.NoError(t, err)
	r.Dispatch()
	operate(t, r, 2)

	var transitions []string
	for _, e := range pub.events {
		ev, ok := e.(events.StateEvent)
		require.True(t, ok)
		assert.Equal(t, "F0", ev.RobotID)
		transitions = append(transitions, ev.From+">"+ev.To)
	}
	assert.Equal(t, []string{"RETURNING>WAITING", "WAITING>DELIVERING", "DELIVERING>RETURNING"}, transitions)
}

func TestStatus(t *testing.T) {
	h := newHarness(1)
	r := New(3, NewGroup(Regular), h.env)
	_, err := r.Load(items(6, 4))
	require.NoError(t, err)
	st := r.Status()
	assert.Equal(t, Status{ID: "R3", Variant: "regular", State: "RETURNING", Floor: 1, Destination: 0, Items: 2}, st)
}
