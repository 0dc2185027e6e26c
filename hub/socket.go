package hub

import (
	"reflect"

	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

// NewSocketServer builds the socket.io server with the transport options the
// realtime channel needs.
func NewSocketServer() *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})
	return socketio.NewServer(nil, opts)
}

// ServerBroadcaster implements Broadcaster on top of the socket.io server.
// Exclusion relies on every socket being a member of its own id-named room.
type ServerBroadcaster struct {
	srv *socketio.Server
}

// NewServerBroadcaster wraps a socket.io server.
func NewServerBroadcaster(srv *socketio.Server) *ServerBroadcaster {
	return &ServerBroadcaster{srv: srv}
}

// ToRoom emits to every member of the room.
func (b *ServerBroadcaster) ToRoom(roomID, event string, args ...any) {
	_ = b.srv.To(socketio.Room(roomID)).Emit(event, args...)
}

// ToRoomExcept emits to every member of the room except one connection.
func (b *ServerBroadcaster) ToRoomExcept(roomID, exceptConnectionID, event string, args ...any) {
	_ = b.srv.To(socketio.Room(roomID)).Except(socketio.Room(exceptConnectionID)).Emit(event, args...)
}

// Bind registers the inbound event handlers on the socket.io server, routing
// each call to the coordinator and acknowledging with the call result.
func Bind(srv *socketio.Server, c *Coordinator) {
	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}
		connectionID := string(socket.Id())

		socket.On("Join", func(datas ...any) {
			ack, args := extractAck(datas)
			result, err := c.Join(connectionID, stringArg(args, 0), stringArg(args, 1))
			if err != nil {
				respond(ack, errorPayload(err))
				return
			}
			socket.Join(socketio.Room(result.RoomID))
			respond(ack, joinPayload(result))
		})

		socket.On("UpdateText", func(datas ...any) {
			ack, args := extractAck(datas)
			err := c.UpdateText(connectionID, stringArg(args, 0), stringArg(args, 1), intArg(args, 2))
			acknowledge(ack, err)
		})

		socket.On("UpdateDocumentState", func(datas ...any) {
			ack, args := extractAck(datas)
			err := c.UpdateDocumentState(connectionID, stringArg(args, 0), stringArg(args, 1), stringArg(args, 2), stringArg(args, 3))
			acknowledge(ack, err)
		})

		socket.On("SetLanguage", func(datas ...any) {
			ack, args := extractAck(datas)
			err := c.SetLanguage(connectionID, stringArg(args, 0), stringArg(args, 1))
			acknowledge(ack, err)
		})

		socket.On("UpdateCursor", func(datas ...any) {
			ack, args := extractAck(datas)
			err := c.UpdateCursor(connectionID, stringArg(args, 0), intArg(args, 1))
			acknowledge(ack, err)
		})

		socket.On("UpdateSelection", func(datas ...any) {
			ack, args := extractAck(datas)
			err := c.UpdateSelection(connectionID, stringArg(args, 0), boolArg(args, 1))
			acknowledge(ack, err)
		})

		socket.On("UpdateCopy", func(datas ...any) {
			ack, args := extractAck(datas)
			err := c.UpdateCopy(connectionID, stringArg(args, 0))
			acknowledge(ack, err)
		})

		socket.On("Leave", func(datas ...any) {
			ack, args := extractAck(datas)
			roomID := stringArg(args, 0)
			// Leave the group first so the departure broadcast cannot
			// reach the leaver.
			socket.Leave(socketio.Room(roomID))
			err := c.Leave(connectionID, roomID)
			acknowledge(ack, err)
		})

		socket.On("disconnect", func(...any) {
			c.Disconnect(connectionID)
		})
	})
}

type ackInvoker func(payload map[string]any)

// extractAck splits a trailing acknowledgement callback off the event
// arguments, invokable regardless of the exact callback signature the
// socket.io parser hands over.
func extractAck(datas []any) (ackInvoker, []any) {
	if len(datas) == 0 {
		return nil, datas
	}
	value := reflect.ValueOf(datas[len(datas)-1])
	if !value.IsValid() || value.Kind() != reflect.Func {
		return nil, datas
	}

	typ := value.Type()
	invoke := func(payload map[string]any) {
		args := make([]reflect.Value, typ.NumIn())
		for i := range args {
			args[i] = reflect.Zero(typ.In(i))
		}
		if typ.NumIn() >= 1 && typ.In(0).Kind() == reflect.Slice {
			args[0] = reflect.ValueOf([]any{payload})
		}
		value.Call(args)
	}
	return invoke, datas[:len(datas)-1]
}

func respond(ack ackInvoker, payload map[string]any) {
	if ack != nil {
		ack(payload)
	}
}

func acknowledge(ack ackInvoker, err error) {
	if err != nil {
		respond(ack, errorPayload(err))
		return
	}
	respond(ack, map[string]any{"status": "ok"})
}

func errorPayload(err error) map[string]any {
	return map[string]any{
		"status": "error",
		"error":  err.Error(),
	}
}

func joinPayload(result JoinResult) map[string]any {
	payload := map[string]any{
		"status":    "ok",
		"name":      result.Name,
		"language":  result.Language,
		"text":      result.Text,
		"version":   result.Version,
		"users":     result.Users,
		"createdBy": result.CreatedBy,
	}
	if result.DocumentState != "" {
		payload["documentState"] = result.DocumentState
	}
	return payload
}

func stringArg(args []any, index int) string {
	if index >= len(args) {
		return ""
	}
	value, _ := args[index].(string)
	return value
}

func intArg(args []any, index int) int {
	if index >= len(args) {
		return -1
	}
	switch value := args[index].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case int64:
		return int(value)
	default:
		return -1
	}
}

func boolArg(args []any, index int) bool {
	if index >= len(args) {
		return false
	}
	value, _ := args[index].(bool)
	return value
}
