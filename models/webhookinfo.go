package models

// WebhookInfo describes the current webhook registration of a bot.
type WebhookInfo struct {
	URL                  string `json:"url"`                          // Registered webhook URL, empty when polling.
	HasCustomCertificate bool   `json:"has_custom_certificate"`       // True if a self-signed certificate was provided.
	PendingUpdateCount   int    `json:"pending_update_count"`         // Number of updates awaiting delivery.
	LastErrorDate        int64  `json:"last_error_date,omitempty"`    // Unix time of the most recent delivery error.
	LastErrorMessage     string `json:"last_error_message,omitempty"` // Description of the most recent delivery error.
}
