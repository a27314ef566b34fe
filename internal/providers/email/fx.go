package email

import (
	"github.com/kaupunki/parking-permits/internal/config"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
	fx.Provide(NewNotifier),
	fx.Provide(func(n *Notifier) permitdomain.Notifier { return n }),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.SMTPHost == "" {
		return &NoOpProvider{}
	}
	return NewSMTP(Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
}
