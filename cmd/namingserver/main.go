// Command namingserver runs the naming service: the Registration and
// Service skeletons over a single in-memory Core.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ewanas/DFS/config"
	"github.com/ewanas/DFS/log"
	"github.com/ewanas/DFS/naming"
	"github.com/ewanas/DFS/rmi"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "namingserver",
	Short: "Run the naming service",
	Long: `
namingserver binds a Registration listener, for storage servers to join
the namespace, and a Service listener, for clients to read and mutate
it, over a single shared in-memory Core.`,
	RunE: run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a YAML config file (optional)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	log.SetLevel(level)

	core := naming.NewCore()
	stopped := make(chan error, 1)
	core.OnStopped = func(cause error) { stopped <- cause }

	regAddr := rmi.Address{Port: config.RegistrationPort}
	svcAddr := rmi.Address{Port: config.ServicePort}
	if err := core.Start(regAddr, svcAddr); err != nil {
		return fmt.Errorf("starting naming core: %w", err)
	}
	log.Info.Printf("naming service: registration on %s, service on %s",
		core.RegistrationAddress(), core.ServiceAddress())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		log.Info.Printf("naming service: received %v, stopping", s)
		core.Stop(nil)
	case cause := <-stopped:
		if cause != nil {
			return fmt.Errorf("naming core stopped: %w", cause)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error.Printf("namingserver: %v", err)
		os.Exit(1)
	}
}
