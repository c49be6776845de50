package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	guerrillamail "github.com/guerrillamail/client-go"
	"github.com/guerrillamail/client-go/internal/config"
	"github.com/guerrillamail/client-go/internal/logging"
)

// BuildContainer creates a dependency injection container holding the
// configuration, the logger and a client built from them.
func BuildContainer(cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register client options
	if err := container.Provide(ClientOptions); err != nil {
		return nil, err
	}

	// Register client
	if err := container.Provide(func(cfg *config.Config, opts []guerrillamail.Option) (*guerrillamail.Client, error) {
		settings := cfg.Client()
		return guerrillamail.New(settings.IP, settings.Agent, opts...)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// ClientOptions translates the configuration into client options.
func ClientOptions(cfg *config.Config, logger *zap.Logger) []guerrillamail.Option {
	settings := cfg.Client()
	opts := []guerrillamail.Option{
		guerrillamail.WithBaseURL(settings.BaseURL),
		guerrillamail.WithLogger(logger),
		guerrillamail.WithStrictAssignment(settings.Strict),
	}
	if settings.Lang != "" {
		opts = append(opts, guerrillamail.WithLanguage(settings.Lang))
	}
	if settings.Timeout > 0 {
		opts = append(opts, guerrillamail.WithTimeout(settings.Timeout))
	}
	return opts
}
