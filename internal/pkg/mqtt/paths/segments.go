package paths

// Topic segments of the seatrack SMS bridge. The full topic is
// {root}/{segment}/{imei}.

// Downstream: bridge -> tracker
const (
	// SMSInbox carries SMS received by the cellular gateway for one tracker.
	// Payload: { "from": "+4799999999", "text": "mmsi 257123456" }
	// Pattern: {root}/sms/inbox/{imei}
	SMSInbox = "sms/inbox"
)

// Upstream: tracker -> bridge
const (
	// Online is the retained presence topic, cleared by the last will.
	// Payload: { "imei": "...", "online": true/false }
	// Pattern: {root}/online/{imei}
	Online = "online"
)
