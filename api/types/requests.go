package types

// SubscribeChannelRequest adds a channel to the watch list
type SubscribeChannelRequest struct {
	ChannelID string `json:"channel_id" binding:"required"`
	Title     string `json:"title"`
}

// SetCategoryRequest pins or clears the manual category of a channel.
// A null category clears the override.
type SetCategoryRequest struct {
	Category *string `json:"category"`
}
