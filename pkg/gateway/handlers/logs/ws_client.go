package logs

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logtail"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// CheckOrigin is left at the library default, which only admits same-origin
// browsers; the session cookie would otherwise authorize any page.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// wsClient wraps one stream connection.
type wsClient struct {
	conn   *websocket.Conn
	id     string
	logger *logging.ColoredLogger
}

func newWSClient(conn *websocket.Conn, id string, logger *logging.ColoredLogger) *wsClient {
	return &wsClient{conn: conn, id: id, logger: logger}
}

// writeLine sends one log line as a JSON frame.
func (c *wsClient) writeLine(line logtail.Line) error {
	frame, err := json.Marshal(StreamMessage{
		Category:  line.Category,
		Path:      line.Path,
		Line:      line.Text,
		Timestamp: line.Time.UnixMilli(),
	})
	if err != nil {
		return err
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.ComponentDebug(logging.ComponentGateway, "log stream: write failed",
			zap.String("conn_id", c.id), zap.Error(err))
		return err
	}
	return nil
}

func (c *wsClient) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeTimeout))
}

func (c *wsClient) closeNormal(reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
}

func (c *wsClient) close() error {
	return c.conn.Close()
}
