package dto

// MediaDTO describes an attachment as the conversation renders it
// inline: videos carry a play overlay, images do not.
type MediaDTO struct {
	URL         string `json:"url"`
	Kind        string `json:"kind"`
	PlayOverlay bool   `json:"play_overlay"`
}

// MessageItem represents one conversation message
type MessageItem struct {
	ID              uint      `json:"id"`
	UUID            string    `json:"uuid"`
	SenderRole      string    `json:"sender_role"`
	SenderName      string    `json:"sender_name"`
	SenderAvatarURL string    `json:"sender_avatar_url,omitempty"`
	Body            string    `json:"body,omitempty"`
	Media           *MediaDTO `json:"media,omitempty"`
	CreatedAt       string    `json:"created_at"`
}

// SendMessageRequest appends a message to a ticket conversation.
// A message needs text or media; both empty is rejected.
type SendMessageRequest struct {
	TicketUUID string `json:"-"` // From URL path
	SenderID   uint   `json:"-"` // From auth context
	SenderRole string `json:"-"` // From auth context
	Body       string `json:"body,omitempty" validate:"omitempty"`
	// Internal: populated by handler after storing the uploaded media
	SavedMediaURL *string `json:"-"`
}

// SendMessageResponse returns the persisted message. Clients do not
// append it locally; the same message arrives over the realtime channel.
type SendMessageResponse struct {
	Message string      `json:"message"`
	Item    MessageItem `json:"item"`
}

// ListMessagesRequest pages through a ticket's conversation in
// chronological order
type ListMessagesRequest struct {
	TicketUUID string `json:"-"` // From URL path
	Page       uint   `json:"page,omitempty"`
	PageSize   uint   `json:"page_size,omitempty"`
}

// ListMessagesResponse returns messages oldest first
type ListMessagesResponse struct {
	Message string        `json:"message"`
	Items   []MessageItem `json:"items"`
}
