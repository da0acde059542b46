package main

import (
	"errors"
	"fmt"

	"github.com/loopwell/invitekit/internal/client"
	"github.com/loopwell/invitekit/internal/configstore"
	"github.com/loopwell/invitekit/internal/events"
	"github.com/loopwell/invitekit/internal/invite"
	"github.com/loopwell/invitekit/internal/locale"
	"github.com/loopwell/invitekit/internal/logger"
	"github.com/loopwell/invitekit/internal/settings"
)

// AppContext bundles the services every command wires at startup.
type AppContext struct {
	Settings settings.Settings
	Logger   *logger.Logger
	Client   *client.Client
	Store    *configstore.Store
	Bus      *events.Bus
}

// newAppContext loads settings, applies flag overrides, and builds the
// backend client the command will drive.
func newAppContext(flags *rootFlags) (*AppContext, error) {
	s, err := settings.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.componentID != "" {
		s.ComponentID = flags.componentID
	}
	if flags.locale != "" {
		s.Locale = locale.Normalize(flags.locale)
	}

	log, err := logger.New(logger.Options{Level: s.LogLevel, HumanReadable: s.LogPretty})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	api := client.New(client.Config{
		BaseURL:       s.APIBaseURL,
		APIKey:        s.APIKey,
		ClientName:    s.ClientName,
		ClientVersion: s.ClientVersion,
		Timeout:       s.Timeout,
		SendRate:      s.SendRate,
		SendBurst:     s.SendBurst,
		Logger:        log,
	})

	return &AppContext{
		Settings: s,
		Logger:   log,
		Client:   api,
		Store:    configstore.New(),
		Bus:      events.NewBus(log),
	}, nil
}

// componentID returns the configured component id, or a command error
// telling the user how to set one.
func (app *AppContext) componentID(operation string) (string, error) {
	if app.Settings.ComponentID != "" {
		return app.Settings.ComponentID, nil
	}
	return "", newCommandError(operation, "resolving the component id",
		errors.New("no component id configured"),
		"Set INVITEKIT_COMPONENT_ID or pass --component.")
}

// newOrchestrator wires an invitation orchestrator over the app's client
// and bus.
func (app *AppContext) newOrchestrator(operation string) (*invite.Orchestrator, error) {
	componentID, err := app.componentID(operation)
	if err != nil {
		return nil, err
	}
	return invite.NewOrchestrator(invite.Config{
		Backend:               app.Client,
		WidgetConfigurationID: componentID,
		Bus:                   app.Bus,
		Logger:                app.Logger,
	})
}
