package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/veloflow/cruisectl/internal/api"
	"github.com/veloflow/cruisectl/internal/bus"
	"github.com/veloflow/cruisectl/internal/configuration"
	"github.com/veloflow/cruisectl/internal/control_loop"
	"github.com/veloflow/cruisectl/internal/controller"
	"github.com/veloflow/cruisectl/internal/router"
	"github.com/veloflow/cruisectl/internal/statistics"
	"github.com/veloflow/cruisectl/internal/ui"
	"github.com/veloflow/cruisectl/internal/util"
)

func RunDaemon() {
	config := configuration.CurrentConfig

	sessionBus, err := bus.NewUdpBus(config.Cid)
	if err != nil {
		ui.Fatal("Cannot join bus session %d: %v", config.Cid, err)
	}

	var reading util.SharedValue[float64]
	var target util.SharedValue[float64]

	messageRouter := router.NewMessageRouter(
		config.InputSenderId,
		config.ControlSenderId,
		&reading,
		&target,
	)
	messageRouter.Attach(sessionBus)

	pid := control_loop.NewPidLoop(
		config.P,
		config.D,
		config.I,
		config.ILimit,
		config.OutputLimitMin,
		config.OutputLimitMax,
	)
	speedController := controller.NewSpeedController(
		sessionBus,
		pid,
		&reading,
		&target,
		config.Freq,
		config.OutputSenderId,
		config.ErrorRollingWindowSize,
	)

	statistics.Register(statistics.NewControllerCollector(speedController, messageRouter))

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		if config.Statistics.Enabled {
			// === Prometheus Exporter
			g.Add(func() error {
				port := config.Statistics.Port
				if port <= 0 || port >= 65535 {
					port = 9000
				}
				addr := fmt.Sprintf(":%d", port)
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				server := &http.Server{Addr: addr, Handler: mux}
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						ui.Error("Cannot start prometheus metrics endpoint (%s)", err.Error())
					}
				}()

				<-ctx.Done()
				ui.Info("Stopping statistics server...")
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				return server.Shutdown(timeoutCtx)
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping statistics server: " + err.Error())
				} else {
					ui.Info("Statistics server stopped.")
				}
			})
		}
	}
	{
		if config.Api.Enabled {
			// === REST api
			g.Add(func() error {
				echoRest := api.CreateRestService(speedController)
				addr := fmt.Sprintf("%s:%d", config.Api.Host, config.Api.Port)
				go func() {
					if err := echoRest.Start(addr); err != nil && err != http.ErrServerClosed {
						ui.Error("Cannot start rest api endpoint (%s)", err.Error())
					}
				}()

				<-ctx.Done()
				ui.Info("Stopping rest api...")
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				return echoRest.Shutdown(timeoutCtx)
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping rest api: " + err.Error())
				} else {
					ui.Info("Rest api stopped.")
				}
			})
		}
	}
	{
		// === speed controller
		g.Add(func() error {
			err := speedController.Run(ctx)
			ui.Info("Speed controller stopped.")
			return err
		}, func(err error) {
			if err != nil {
				ui.Warning("Error running speed controller: %v", err)
			}
		})
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, os.Kill)

		g.Add(func() error {
			<-sig
			ui.Info("Received SIGTERM signal, exiting...")
			return nil
		}, func(err error) {
			defer close(sig)
			cancel()
		})
	}

	err = g.Run()
	_ = sessionBus.Close()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		ui.Info("Done.")
		os.Exit(0)
	}
}
