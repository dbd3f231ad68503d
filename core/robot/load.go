package robot

import (
	"fmt"
	"slices"

	"github.com/kilianp07/automail/core/model"
)

// Load takes items from the front of pending. Hand-carrying variants fill the
// hand first and then the tube, stopping at the first overweight item; items
// already taken stay taken. Bulk robots take a whole batch or nothing and
// stack each item on the front of the tube, so the last item taken is
// delivered first.
func (r *Robot) Load(pending []model.MailItem) (int, error) {
	if r.group.variant.HasHand() {
		return r.loadHand(pending)
	}
	return r.loadTube(pending)
}

func (r *Robot) loadHand(pending []model.MailItem) (int, error) {
	taken := 0
	if r.hand == nil && taken < len(pending) {
		item := pending[taken]
		if item.Overweight() {
			return taken, r.tooHeavy(item)
		}
		r.hand = &item
		taken++
	}
	for len(r.tube) < r.group.variant.TubeCapacity() && taken < len(pending) {
		item := pending[taken]
		if item.Overweight() {
			return taken, r.tooHeavy(item)
		}
		r.tube = append(r.tube, item)
		taken++
	}
	return taken, nil
}

func (r *Robot) loadTube(pending []model.MailItem) (int, error) {
	n := min(r.group.variant.TubeCapacity()-len(r.tube), len(pending))
	if n <= 0 {
		return 0, nil
	}
	batch := pending[:n]
	for _, item := range batch {
		if item.Overweight() {
			return 0, r.tooHeavy(item)
		}
	}
	for _, item := range batch {
		r.tube = slices.Insert(r.tube, 0, item)
	}
	return n, nil
}

func (r *Robot) tooHeavy(item model.MailItem) error {
	return fmt.Errorf("robot %s: item %s weighs %dg, max %dg: %w",
		r.id, item.ID, item.Weight, model.MaxItemWeight, ErrItemTooHeavy)
}
