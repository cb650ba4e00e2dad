package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Agrid-Dev/hvacrux/cmd/app"
	httpctrl "github.com/Agrid-Dev/hvacrux/internal/controllers/http"
	modbusctrl "github.com/Agrid-Dev/hvacrux/internal/controllers/modbus"
	mqttctrl "github.com/Agrid-Dev/hvacrux/internal/controllers/mqtt"
	"github.com/Agrid-Dev/hvacrux/internal/estimator"
)

func main() {
	var (
		configPath  string
		printConfig bool
	)
	flag.StringVar(&configPath, "config", "config.yaml", "path to config file (.yaml/.yml/.json)")
	flag.BoolVar(&printConfig, "print-config", false, "print the effective config as YAML and exit")
	flag.Parse()

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	app.ApplyEnvOverrides(&cfg)

	if printConfig {
		if err := app.WriteYAML(os.Stdout, cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	logger, err := app.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	b, err := cfg.Building()
	if err != nil {
		log.Fatal(err)
	}
	conds, err := cfg.DesignConditions()
	if err != nil {
		log.Fatal(err)
	}
	est, err := estimator.New(b, conds)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Controllers.HTTP.Enabled {
		srv := httpctrl.New(est, cfg.Controllers.HTTP.Addr, cfg.SiteID, logger)
		g.Go(func() error { return srv.Run(ctx) })
	}

	if cfg.Controllers.MQTT.Enabled {
		m := cfg.Controllers.MQTT
		mc, err := mqttctrl.New(est, mqttctrl.Config{
			SiteID:          cfg.SiteID,
			BrokerURL:       m.BrokerURL,
			ClientID:        m.ClientID,
			BaseTopic:       m.BaseTopic,
			QoS:             m.QoS,
			RetainSnapshot:  m.RetainSnapshot,
			PublishInterval: m.PublishInterval,
			Username:        m.Username,
			Password:        m.Password,
		}, logger)
		if err != nil {
			log.Fatal(err)
		}
		g.Go(func() error { return mc.Run(ctx) })
	}

	if cfg.Controllers.MODBUS.Enabled {
		mb := cfg.Controllers.MODBUS
		mbc, err := modbusctrl.New(est, modbusctrl.Config{
			SiteID: cfg.SiteID,
			Addr:   mb.Addr,
			UnitID: mb.UnitID,
		}, logger)
		if err != nil {
			log.Fatal(err)
		}
		g.Go(func() error { return mbc.Run(ctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("controller exited", "err", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
