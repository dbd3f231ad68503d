package mqtt

import (
	"github.com/kilianp07/automail/core/delivery"
	"github.com/kilianp07/automail/core/events"
)

// Publisher announces engine activity to an MQTT broker. Each call returns
// the identifier of the published message.
type Publisher interface {
	PublishDelivery(rec delivery.Record) (messageID string, err error)
	PublishState(ev events.StateEvent) (messageID string, err error)
}
