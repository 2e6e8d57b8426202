// clock-sim runs the clock firmware on the host with a web view of the
// display, Prometheus metrics and optional MQTT event publishing.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"picoclock/core"
	"picoclock/firmware"
	"picoclock/host/sim"
	"picoclock/host/timesync"
)

var (
	configPath = flag.String("config", "", "YAML settings file")
	listen     = flag.String("listen", "", "HTTP listen address, overrides the settings file")
	database   = flag.String("db", "", "Configuration database, overrides the settings file")
	debug      = flag.Bool("debug", false, "Print firmware debug output")
)

func main() {
	flag.Parse()

	settings, err := sim.LoadSettings(*configPath)
	if err != nil {
		log.Fatalf("settings: %v", err)
	}
	if *listen != "" {
		settings.Listen = *listen
	}
	if *database != "" {
		settings.Database = *database
	}
	if *debug {
		settings.Debug = true
	}

	core.SetDebugWriter(func(s string) { log.Print(s) })
	core.SetDebugEnabled(settings.Debug)

	store, err := sim.OpenBoltStore(settings.Database)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := sim.Options{
		Settings: settings,
		Store:    store,
		RTC:      &sim.HostRTC{},
		Metrics:  sim.NewMetrics(reg),
	}

	if settings.MQTT.Broker != "" {
		pub, err := sim.NewMQTTPublisher(settings.MQTT.Broker, settings.MQTT.ClientID, settings.MQTT.Topic)
		if err != nil {
			log.Printf("mqtt disabled: %v", err)
		} else {
			defer pub.Close()
			opts.Publisher = pub
		}
	}

	if settings.Buttons.Chip != "" {
		buttons, err := sim.NewLineButtons(settings.Buttons.Chip, settings.Buttons.Pins)
		if err != nil {
			log.Fatalf("buttons: %v", err)
		}
		defer buttons.Close()
		opts.Buttons = buttons
	}

	var src firmware.TimeSource = timesync.SystemSource{}
	if settings.Chrony != "" {
		chrony := timesync.NewChronySource(settings.Chrony)
		defer chrony.Close()
		src = chrony
	}
	opts.Source = src

	clock := sim.New(opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpServer := &http.Server{Addr: settings.Listen, Handler: clock.Router(reg)}
	httpDoneCh := make(chan error, 1)
	go func() {
		log.Printf("http server listening on %s", httpServer.Addr)
		httpDoneCh <- httpServer.ListenAndServe()
	}()

	loopDoneCh := make(chan error, 1)
	go func() { loopDoneCh <- clock.Run(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exit := 0
	select {
	case err := <-httpDoneCh:
		log.Printf("http server died: %v", err)
		exit = 1
	case err := <-loopDoneCh:
		log.Printf("clock loop died: %v", err)
		exit = 1
	case <-sigCh:
		log.Printf("interrupt")
	}
	signal.Stop(sigCh)
	cancel()

	tctx, c := context.WithTimeout(context.Background(), time.Second)
	if err := httpServer.Shutdown(tctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("http shutdown: %v", err)
	}
	c()
	if exit != 0 {
		os.Exit(exit)
	}
}
