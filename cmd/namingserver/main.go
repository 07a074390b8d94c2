// Command namingserver runs a brisk naming server, serving the Service
// interface to clients and the Registration interface to storage
// servers.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/brisk-labs/brisk/log"
	"github.com/brisk-labs/brisk/namingserver"
	"github.com/spf13/cobra"
)

var (
	bindHost string
	logLevel string
)

func main() {
	root := &cobra.Command{
		Use:   "namingserver",
		Short: "Run a brisk naming server",
		RunE:  run,
	}
	root.Flags().StringVar(&bindHost, "host", "0.0.0.0", "host to bind the Service and Registration ports on")
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, or error")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := log.SetLevel(logLevel); err != nil {
		return err
	}

	s := namingserver.New()
	if err := s.Start(bindHost); err != nil {
		return err
	}
	log.Info.Printf("namingserver: service listening on %s, registration listening on %s", s.ServiceAddr(), s.RegistrationAddr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info.Print("namingserver: shutting down")
	s.Stop()
	return nil
}
