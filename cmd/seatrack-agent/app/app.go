package app

import (
	"fmt"

	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/autopeer-io/seatrack/cmd/seatrack-agent/app/options"
	"github.com/autopeer-io/seatrack/pkg/app"
	"github.com/autopeer-io/seatrack/pkg/log"
)

const (
	commandName = "seatrack-agent"
	commandDesc = `The Seatrack agent runs on an unattended vessel tracker. It samples the
GPS position, air temperature, humidity and cellular signal quality,
uploads a telemetry record over the cellular bearer and accepts remote
configuration by SMS from the registered owner.`
)

func NewApp() *app.App {
	opts := options.NewAgentOptions()
	application := app.NewApp(
		commandName,
		"Launch the Seatrack vessel tracker agent",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithCommands(newInspectCommand()),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.AgentOptions) app.RunFunc {
	return func() error {
		log.Init(opts.Log)
		defer func() { _ = log.Sync() }()

		ctx := genericapiserver.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		agent, err := cfg.NewAgent()
		if err != nil {
			return fmt.Errorf("failed to create agent: %w", err)
		}

		return agent.Run(ctx)
	}
}
