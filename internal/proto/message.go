package proto

import "encoding/json"

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	ProtocolVersion = 1

	InboundTypeConnect     = "connect"
	InboundTypeSubscribe   = "subscribe"
	InboundTypeUnsubscribe = "unsubscribe"
	InboundTypeSend        = "send"

	OutboundTypeConnected = "connected"
	OutboundTypeMessage   = "message"
	OutboundTypeError     = "error"
)

// ConnectData opens a session on the channel.
type ConnectData struct {
	Protocol int `json:"protocol,omitempty"`
}

// SubscribeData attaches a subscription id to a topic.
type SubscribeData struct {
	ID          string `json:"id"`
	Destination string `json:"destination"`
}

// UnsubscribeData detaches a subscription.
type UnsubscribeData struct {
	ID string `json:"id"`
}

// SendData publishes a body to an application destination.
type SendData struct {
	Destination string          `json:"destination"`
	Body        json.RawMessage `json:"body"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Envelope is the receiving side of Outbound with the payload left undecoded.
type Envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *Error          `json:"error,omitempty"`
}

// ConnectedData acknowledges a connect frame.
type ConnectedData struct {
	Session  string `json:"session"`
	Protocol int    `json:"protocol"`
}

// MessageData carries a published body to a subscription.
type MessageData struct {
	Subscription string `json:"subscription"`
	Destination  string `json:"destination"`
	Body         any    `json:"body"`
}

// RawMessageData is MessageData with the body left undecoded.
type RawMessageData struct {
	Subscription string          `json:"subscription"`
	Destination  string          `json:"destination"`
	Body         json.RawMessage `json:"body"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Error codes produced by the transport itself rather than the hub.
const (
	ErrCodeUnsupportedVersion = "unsupported_version"
	ErrCodeConnectRequired    = "connect_required"
	ErrCodeInvalidFrame       = "invalid_message"
)
