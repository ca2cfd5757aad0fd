package model

// NotificationField is one name/value line of a change notification.
type NotificationField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Notification is the payload handed to notifiers when the wallet changes.
// Fields always start with the native balance.
type Notification struct {
	Content     string              `json:"content"`
	Address     string              `json:"address"`
	Fingerprint Fingerprint         `json:"fingerprint"`
	Fields      []NotificationField `json:"fields"`
}
