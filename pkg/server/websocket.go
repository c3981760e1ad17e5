package server

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Sessions are gated by the bearer token, not by origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsStream adapts a websocket connection to the reader and writer a REPL
// session expects. Each incoming text message is one or more input lines;
// each Write becomes one outgoing text message.
type wsStream struct {
	conn *websocket.Conn
	buf  bytes.Buffer
}

func newWSStream(conn *websocket.Conn) *wsStream {
	return &wsStream{conn: conn}
}

func (s *wsStream) Read(p []byte) (int, error) {
	for s.buf.Len() == 0 {
		msgType, msg, err := s.conn.ReadMessage()
		if err != nil {
			return 0, io.EOF
		}
		if msgType != websocket.TextMessage {
			continue
		}
		s.buf.Write(msg)
		if len(msg) == 0 || msg[len(msg)-1] != '\n' {
			s.buf.WriteByte('\n')
		}
	}
	return s.buf.Read(p)
}

func (s *wsStream) Write(p []byte) (int, error) {
	if err := s.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close sends a close frame carrying reason and closes the connection.
func (s *wsStream) Close(reason string) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = s.conn.WriteMessage(websocket.CloseMessage, msg)
	return s.conn.Close()
}
