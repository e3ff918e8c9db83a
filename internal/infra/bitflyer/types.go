package bitflyer

// The lightstream endpoint speaks JSON-RPC 2.0 over websocket: one
// subscribe call per channel, then channelMessage notifications.

type subscribeParams struct {
	Channel string `json:"channel"`
}

type rpcRequest struct {
	Version string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  subscribeParams `json:"params"`
	ID      int             `json:"id"`
}

type rpcResponse struct {
	Version string    `json:"jsonrpc"`
	Result  bool      `json:"result"`
	Error   *rpcError `json:"error"`
	ID      *int      `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcNotification struct {
	Method string         `json:"method"`
	Params channelMessage `json:"params"`
}

type channelMessage struct {
	Channel string        `json:"channel"`
	Message tickerMessage `json:"message"`
}

// tickerMessage is the subset of the lightning ticker payload the
// exchange consumes.
type tickerMessage struct {
	BestBid   float64 `json:"best_bid"`
	BestAsk   float64 `json:"best_ask"`
	Timestamp string  `json:"timestamp"`
}
