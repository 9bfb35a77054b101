package health

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malonaz/carscout/internal/agent"
	"github.com/malonaz/carscout/internal/cli"
	"github.com/malonaz/carscout/internal/configuration"
)

// NewCmd instantiates and returns the health command.
func NewCmd(config *configuration.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the car search service",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := agent.NewClient(config.ServiceURL, config.Timeout())
			health, err := client.Health(cmd.Context())
			if err != nil {
				return errors.Wrapf(err, "checking %s", client.BaseURL())
			}
			Print(health)
			if !health.Healthy() {
				return errors.Errorf("service is %s", health.Status)
			}
			return nil
		},
	}
}

// Print writes a health report to the terminal.
func Print(health *agent.HealthResponse) {
	cli.Title("carscout service")
	if health.Healthy() {
		cli.Count("status: %s\n", health.Status)
	} else {
		cli.Error("status: %s\n", health.Status)
	}
	cli.Detail("scraper available: %s\n", yesNo(health.ScraperAvailable))
	cli.Detail("ai processor available: %s\n", yesNo(health.AIProcessorAvailable))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
