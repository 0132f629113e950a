package chat

import "time"

// Session groups the turns of one caller: a browser tab, a websocket
// connection or a Telegram chat.
type Session struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"createdAt"`
}
