package ws

// FeedChannel is the single channel feed events are pushed on. Clients have
// no publish capability here; frames flow server to client only.
const FeedChannel = "posts"

// Actions carried by feed events.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event is a dirty-signal, not a delta: it tells subscribers that the feed
// changed and they should refetch, it never carries the changed post.
type Event struct {
	Channel string `json:"channel"`
	Action  string `json:"action"`
}

// NewFeedEvent builds a feed event for the given action.
func NewFeedEvent(action string) *Event {
	return &Event{Channel: FeedChannel, Action: action}
}

// inboundFrame is the only client→server traffic we accept.
type inboundFrame struct {
	Type string `json:"type"`
}

type pongFrame struct {
	Type string `json:"type"`
}
