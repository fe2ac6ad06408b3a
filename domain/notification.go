package domain

// NotificationFeedLimit caps a single feed read.
const NotificationFeedLimit = 20

type Notification struct {
	ChannelID ChannelID `json:"channel_id"`
	DmID      DmID      `json:"dm_id"`
	Text      string    `json:"notification_message"`
}

func NewNotification(ref ContainerRef, text string) Notification {
	return Notification{ChannelID: ref.ChannelID(), DmID: ref.DmID(), Text: text}
}
