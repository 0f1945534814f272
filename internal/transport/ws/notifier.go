package ws

// HubNotifier implements service.Notifier against the local WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyPostCreated() {
	n.hub.Broadcast(NewFeedEvent(ActionCreate))
}

func (n *HubNotifier) NotifyPostUpdated() {
	n.hub.Broadcast(NewFeedEvent(ActionUpdate))
}

func (n *HubNotifier) NotifyPostDeleted() {
	n.hub.Broadcast(NewFeedEvent(ActionDelete))
}
