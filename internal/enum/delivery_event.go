package enum

// DeliveryEventType mirrors the provider's message lifecycle event vocabulary.
type DeliveryEventType string

const (
	DeliveryEventSend             DeliveryEventType = "SEND"
	DeliveryEventReject           DeliveryEventType = "REJECT"
	DeliveryEventBounce           DeliveryEventType = "BOUNCE"
	DeliveryEventComplaint        DeliveryEventType = "COMPLAINT"
	DeliveryEventDelivery         DeliveryEventType = "DELIVERY"
	DeliveryEventOpen             DeliveryEventType = "OPEN"
	DeliveryEventClick            DeliveryEventType = "CLICK"
	DeliveryEventRenderingFailure DeliveryEventType = "RENDERING_FAILURE"
	DeliveryEventDeliveryDelay    DeliveryEventType = "DELIVERY_DELAY"
	DeliveryEventSubscription     DeliveryEventType = "SUBSCRIPTION"
)

func (t DeliveryEventType) String() string {
	return string(t)
}

type BounceSubtype string

const (
	BouncePermanent    BounceSubtype = "PERMANENT"
	BounceTransient    BounceSubtype = "TRANSIENT"
	BounceUndetermined BounceSubtype = "UNDETERMINED"
)

func (t BounceSubtype) String() string {
	return string(t)
}
