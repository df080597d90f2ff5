package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/touchrec/touchrec/utils"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 64 * 1024

	// statusPushPeriod matches the CLI's --status refresh
	statusPushPeriod = 500 * time.Millisecond
)

// JSONRPCNotification is a server-initiated message without an id.
type JSONRPCNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type wsConnection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	done    chan struct{}

	subMu sync.Mutex
	unsub chan struct{}
}

// connection-scoped methods, handled before the shared registry
var wsMethods = map[string]func(*wsConnection) interface{}{
	"playback.subscribe":   (*wsConnection).subscribe,
	"playback.unsubscribe": (*wsConnection).unsubscribe,
}

func newUpgrader(enableCORS bool) *websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if enableCORS {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	} else {
		upgrader.CheckOrigin = isSameOrigin
	}

	return &upgrader
}

// NewWebSocketHandler serves JSON-RPC over a websocket, one request per text
// message. Clients may subscribe to playback status notifications.
func NewWebSocketHandler(enableCORS bool) http.Handler {
	upgrader := newUpgrader(enableCORS)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			utils.Warn("WebSocket upgrade failed: %v", err)
			return
		}

		wsConn := &wsConnection{conn: conn, done: make(chan struct{})}
		wsConn.serve()
	})
}

func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}

func (wsc *wsConnection) serve() {
	defer wsc.close()

	wsc.conn.SetReadLimit(wsMaxMessageSize)
	_ = wsc.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	wsc.conn.SetPongHandler(func(string) error {
		return wsc.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go wsc.keepalive()

	for {
		messageType, message, err := wsc.conn.ReadMessage()
		if err != nil {
			utils.Verbose("WebSocket connection closed: %v", err)
			return
		}

		if messageType != websocket.TextMessage {
			_ = wsc.sendError(nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgTextOnly)
			continue
		}

		wsc.handleMessage(message)
	}
}

func (wsc *wsConnection) close() {
	wsc.unsubscribe()
	close(wsc.done)
	_ = wsc.conn.Close()
}

// keepalive pings the client so dead peers hit the read deadline.
func (wsc *wsConnection) keepalive() {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-wsc.done:
			return
		case <-ticker.C:
			if err := wsc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				utils.Verbose("WebSocket ping failed: %v", err)
				return
			}
		}
	}
}

func (wsc *wsConnection) handleMessage(message []byte) {
	var req JSONRPCRequest
	if err := json.Unmarshal(message, &req); err != nil {
		_ = wsc.sendError(nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if rpcErr := validateJSONRPCRequest(req); rpcErr != nil {
		_ = wsc.sendError(rpcErr.id, rpcErr.code, rpcErr.message, rpcErr.data)
		return
	}

	utils.Info("WebSocket Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	if method, ok := wsMethods[req.Method]; ok {
		_ = wsc.sendResponse(req.ID, method(wsc))
		return
	}

	handler, exists := GetMethodRegistry()[req.Method]
	if !exists {
		_ = wsc.sendError(req.ID, ErrCodeMethodNotFound, errTitleMethodMissing, req.Method+" not found")
		return
	}

	result, err := handler(req.Params)
	if err != nil {
		if errors.Is(err, errInvalidParams) {
			_ = wsc.sendError(req.ID, ErrCodeInvalidParams, errTitleInvalidParams, err.Error())
			return
		}
		utils.Warn("Error executing method %s: %v", req.Method, err)
		_ = wsc.sendError(req.ID, ErrCodeServerError, errTitleServerError, err.Error())
		return
	}

	_ = wsc.sendResponse(req.ID, result)
}

func (wsc *wsConnection) subscribe() interface{} {
	wsc.subMu.Lock()
	defer wsc.subMu.Unlock()

	if wsc.unsub == nil {
		wsc.unsub = make(chan struct{})
		go wsc.pushStatus(wsc.unsub)
	}
	return okResponse
}

func (wsc *wsConnection) unsubscribe() interface{} {
	wsc.subMu.Lock()
	defer wsc.subMu.Unlock()

	if wsc.unsub != nil {
		close(wsc.unsub)
		wsc.unsub = nil
	}
	return okResponse
}

// pushStatus sends playback.status notifications until unsubscribed.
func (wsc *wsConnection) pushStatus(unsub <-chan struct{}) {
	ticker := time.NewTicker(statusPushPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-unsub:
			return
		case <-wsc.done:
			return
		case <-ticker.C:
		}

		note := JSONRPCNotification{JSONRPC: "2.0", Method: "playback.status", Params: playbacks.status()}
		if err := wsc.sendJSON(note); err != nil {
			utils.Verbose("WebSocket status push stopped: %v", err)
			return
		}
	}
}

func (wsc *wsConnection) sendResponse(id interface{}, result interface{}) error {
	return wsc.sendJSON(JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	})
}

func (wsc *wsConnection) sendError(id interface{}, code int, message string, data interface{}) error {
	return wsc.sendJSON(JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	})
}

func (wsc *wsConnection) sendJSON(v interface{}) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()

	_ = wsc.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return wsc.conn.WriteJSON(v)
}
