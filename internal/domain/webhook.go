package domain

import "strconv"

// EventPasswordResetConfirmed is the provider event emitted after a completed reset.
const EventPasswordResetConfirmed = "password.reset_confirmed"

type WebhookEvent struct {
	Type string           `json:"type"`
	Data WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	UserID   string `json:"user_id"`
	MemberID string `json:"member_id,omitempty"`
}

// Subject returns the user identifier, preferring user_id over member_id.
func (e WebhookEvent) Subject() string {
	if e.Data.UserID != "" {
		return e.Data.UserID
	}
	return e.Data.MemberID
}

// WebhookEventFromPayload reads the known fields of a decoded JSON object.
// Fields of an unexpected type are left empty rather than rejected.
func WebhookEventFromPayload(p map[string]any) WebhookEvent {
	evt := WebhookEvent{Type: stringField(p["type"])}
	if data, ok := p["data"].(map[string]any); ok {
		evt.Data.UserID = stringField(data["user_id"])
		evt.Data.MemberID = stringField(data["member_id"])
	}
	return evt
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}
