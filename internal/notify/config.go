package notify

import "jobportal-backend/internal/shared/config"

// DeliverySender returns the sender that actually hands mail off: SMTP when a
// relay is configured, the log otherwise.
func DeliverySender(cfg config.Config) (Sender, error) {
	if cfg.SMTPHost == "" {
		return LogSender{}, nil
	}
	return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.NotifyFrom)
}
