// Command storageserver runs a storage server: it exposes its local
// file tree under Storage and Command skeletons, then registers with
// the naming service, deleting whatever local copies the naming
// service reports as already claimed.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ewanas/DFS/config"
	"github.com/ewanas/DFS/log"
	"github.com/ewanas/DFS/naming"
	"github.com/ewanas/DFS/path"
	"github.com/ewanas/DFS/rmi"
	"github.com/ewanas/DFS/storage"
	"github.com/ewanas/DFS/storage/local"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "storageserver",
	Short: "Run a storage server",
	Long: `
storageserver serves a local directory's file content over the
Storage and Command remote interfaces, registering its inventory with
the naming service at startup.`,
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

	if err := os.MkdirAll(cfg.StorageRoot, 0o755); err != nil {
		return fmt.Errorf("preparing storage root: %w", err)
	}

	srv := local.New(cfg.StorageRoot)
	storageIface := reflect.TypeOf((*storage.Storage)(nil)).Elem()
	commandIface := reflect.TypeOf((*storage.Command)(nil)).Elem()

	storageSkel, err := rmi.NewSkeleton(storageIface, srv, rmi.Address{Host: cfg.StorageHost})
	if err != nil {
		return fmt.Errorf("creating storage skeleton: %w", err)
	}
	commandSkel, err := rmi.NewSkeleton(commandIface, srv, rmi.Address{Host: cfg.StorageHost})
	if err != nil {
		return fmt.Errorf("creating command skeleton: %w", err)
	}

	stopped := make(chan error, 2)
	storageSkel.ListenError = func(err error) { stopped <- err }
	commandSkel.ListenError = func(err error) { stopped <- err }

	if err := storageSkel.Start(); err != nil {
		return fmt.Errorf("starting storage skeleton: %w", err)
	}
	if err := commandSkel.Start(); err != nil {
		storageSkel.Stop()
		return fmt.Errorf("starting command skeleton: %w", err)
	}
	defer storageSkel.Stop()
	defer commandSkel.Stop()

	storageStub, err := storage.NewStub(storageSkel)
	if err != nil {
		return fmt.Errorf("building storage stub: %w", err)
	}
	commandStub, err := storage.NewCommandStub(commandSkel)
	if err != nil {
		return fmt.Errorf("building command stub: %w", err)
	}

	localPaths, err := path.ListLocal(cfg.StorageRoot)
	if err != nil {
		return fmt.Errorf("scanning storage root: %w", err)
	}

	namingHost := cfg.NamingHost
	regStub, err := naming.NewRegistrationStubForAddress(rmi.Address{Host: namingHost, Port: config.RegistrationPort})
	if err != nil {
		return fmt.Errorf("building registration stub: %w", err)
	}

	toDelete, err := regStub.Register(storageStub, commandStub, localPaths)
	if err != nil {
		return fmt.Errorf("registering with naming service: %w", err)
	}
	for _, p := range toDelete {
		if err := srv.Delete(p); err != nil {
			log.Error.Printf("storage server: deleting reconciled path %s: %v", p, err)
		}
	}
	log.Info.Printf("storage server: registered %d local path(s), %d reconciled away",
		len(localPaths), len(toDelete))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		log.Info.Printf("storage server: received %v, stopping", s)
	case err := <-stopped:
		if err != nil {
			return fmt.Errorf("storage server stopped: %w", err)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error.Printf("storageserver: %v", err)
		os.Exit(1)
	}
}
