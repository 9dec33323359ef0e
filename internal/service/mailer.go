package service

import "github.com/rs/zerolog"

// LogMailer 将重置链接写入日志，用于未接入真实邮件服务的环境。
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer 构造 LogMailer
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With().Str("service", "mailer").Logger()}
}

// SendPasswordReset 记录收件人与重置链接
func (m *LogMailer) SendPasswordReset(email, link string) error {
	m.logger.Info().Str("email", email).Str("link", link).Msg("password reset requested")
	return nil
}
