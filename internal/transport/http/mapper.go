package http

import (
	"encoding/json"

	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/proto"
)

// inboundToCommand maps a post-handshake frame to a hub command.
// Malformed payloads yield a protocol error rather than closing the connection.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeConnect:
		return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "already connected"}
	case proto.InboundTypeSubscribe:
		var sub proto.SubscribeData
		if err := decodeData(inbound.Data, &sub); err != nil {
			return nil, err
		}
		if sub.ID == "" || sub.Destination == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "id and destination are required"}
		}
		return &core.Command{
			Kind:           core.CommandSubscribe,
			SubscriptionID: sub.ID,
			Destination:    sub.Destination,
		}, nil
	case proto.InboundTypeUnsubscribe:
		var unsub proto.UnsubscribeData
		if err := decodeData(inbound.Data, &unsub); err != nil {
			return nil, err
		}
		if unsub.ID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "id is required"}
		}
		return &core.Command{
			Kind:           core.CommandUnsubscribe,
			SubscriptionID: unsub.ID,
		}, nil
	case proto.InboundTypeSend:
		var send proto.SendData
		if err := decodeData(inbound.Data, &send); err != nil {
			return nil, err
		}
		if send.Destination == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "destination is required"}
		}
		var body proto.ChatMessageRequest
		if err := decodeData(send.Body, &body); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:        core.CommandSend,
			Destination: send.Destination,
			// ID and CreatedAt are assigned when the message is stored
			Message: core.Message{
				SenderID: body.SenderID,
				Content:  body.Content,
			},
		}, nil
	default:
		return nil, &proto.Error{Code: proto.ErrCodeInvalidFrame, Msg: "unknown message type"}
	}
}

func decodeData(data json.RawMessage, v any) *proto.Error {
	if len(data) == 0 {
		return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "missing data"}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed data"}
	}
	return nil
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeMessage,
			Data: proto.MessageData{
				Subscription: event.SubscriptionID,
				Destination:  event.Destination,
				Body:         proto.NewChatMessageResponse(event.Message),
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event"}}
	}
}
