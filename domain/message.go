// Messages are immutable once delivered; the ID is chosen by the client and
// is the deduplication key across retransmissions.
package domain

import "time"

type Message struct {
	ID       string
	Room     RoomID
	From     string
	FromName string
	Operator bool
	Content  string
	At       time.Time
}
