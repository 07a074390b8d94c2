// Command storageserver runs a brisk storage server: it hosts a subtree
// of the local filesystem and registers itself with a naming server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/brisk-labs/brisk/log"
	"github.com/brisk-labs/brisk/storageserver"
	"github.com/spf13/cobra"
)

var (
	root              string
	hostname          string
	namingRegistration string
	logLevel          string
)

func main() {
	cmd := &cobra.Command{
		Use:   "storageserver",
		Short: "Run a brisk storage server",
		RunE:  run,
	}
	cmd.Flags().StringVar(&root, "root", "", "directory to serve (must already exist)")
	cmd.Flags().StringVar(&hostname, "hostname", "", "hostname to advertise to the naming server")
	cmd.Flags().StringVar(&namingRegistration, "naming-registration", "", "address of the naming server's Registration port")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, or error")
	_ = cmd.MarkFlagRequired("root")
	_ = cmd.MarkFlagRequired("hostname")
	_ = cmd.MarkFlagRequired("naming-registration")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := log.SetLevel(logLevel); err != nil {
		return err
	}

	s, err := storageserver.New(root)
	if err != nil {
		return err
	}
	if err := s.Start(hostname, namingRegistration); err != nil {
		return err
	}
	log.Info.Printf("storageserver: serving %s, registered with %s", root, namingRegistration)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info.Print("storageserver: shutting down")
	s.Stop()
	return nil
}
