package notifx

// EmailMessage is a plain-text operator notification.
type EmailMessage struct {
	From     string   `json:"from"`
	To       []string `json:"to"`
	ReplyTo  string   `json:"reply_to,omitempty"`
	Subject  string   `json:"subject"`
	TextBody string   `json:"text_body"`
}
