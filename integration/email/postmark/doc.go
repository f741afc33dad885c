// Package postmark sends carousel messages as emails through Postmark.
//
// Every delivered message becomes one plain text email to Config.Recipient,
// sent from SenderEmail with Reply-To set to SupportEmail. The subject carries
// the message sequence number:
//
//	sink, err := postmark.New(postmark.Config{
//		PostmarkServerToken:  os.Getenv("POSTMARK_SERVER_TOKEN"),
//		PostmarkAccountToken: os.Getenv("POSTMARK_ACCOUNT_TOKEN"),
//		SenderEmail:          "noreply@example.com",
//		SupportEmail:         "support@example.com",
//		Recipient:            "ops@example.com",
//	}, postmark.WithLogger(log))
//
// API failures and non-zero Postmark error codes are wrapped in
// ErrFailedToSendEmail and passed to the handler set with WithErrorHandler.
package postmark
