package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/akshit7093/VM-manager-AgenticAi/pkg/app"
)

// program adapts the daemon runtime to the service manager's lifecycle.
type program struct {
	params app.RunParams

	rt    *app.Runtime
	hupCh chan os.Signal
}

// Start implements service.Interface. It must return without blocking.
func (p *program) Start(_ service.Service) error {
	rt, err := app.Build(context.Background(), p.params, app.ModeDaemon)
	if err != nil {
		return err
	}
	if err := rt.Start(); err != nil {
		rt.Close()
		return err
	}
	p.rt = rt

	// The service manager owns INT and TERM; HUP keeps meaning reload.
	p.hupCh = make(chan os.Signal, 1)
	signal.Notify(p.hupCh, syscall.SIGHUP)
	go func() {
		for range p.hupCh {
			rt.Logger.Info("SIGHUP received, reloading configuration")
			if err := rt.Reload(context.Background()); err != nil {
				rt.Logger.Error("reload failed", "error", err)
			}
		}
	}()
	return nil
}

// Stop implements service.Interface.
func (p *program) Stop(_ service.Service) error {
	if p.hupCh != nil {
		signal.Stop(p.hupCh)
		close(p.hupCh)
	}
	if p.rt != nil {
		p.rt.Close()
	}
	return nil
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Run or manage vmman as a system service",
	}
	cmd.AddCommand(
		serviceControlCmd("install", "Install the system service"),
		serviceControlCmd("uninstall", "Remove the system service"),
		serviceControlCmd("start", "Start the installed service"),
		serviceControlCmd("stop", "Stop the running service"),
		serviceRunCmd(),
	)
	return cmd
}

// newService builds the service definition. The persistent flags are
// baked into the installed unit so the managed process finds the same
// config and data directory.
func newService() (service.Service, error) {
	args := []string{"service", "run"}
	if flagConfig != "" {
		args = append(args, "--config", flagConfig)
	}
	if flagDataDir != "" {
		args = append(args, "--data-dir", flagDataDir)
	}
	return service.New(&program{params: runParams()}, &service.Config{
		Name:        "vmman",
		DisplayName: "vmman",
		Description: "Natural-language command daemon for a simulated cloud backend.",
		Arguments:   args,
	})
}

func serviceControlCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			if err := service.Control(svc, action); err != nil {
				return fmt.Errorf("service %s: %w", action, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "service %s: ok\n", action)
			return nil
		},
	}
}

func serviceRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run in service mode (invoked by the service manager)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			return svc.Run()
		},
	}
}
