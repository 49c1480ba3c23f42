// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"climactl/internal/advisor"
	"climactl/internal/climate"
	"climactl/internal/config"
	"climactl/internal/emoncms"
	"climactl/internal/metrics"
	"climactl/internal/mqttpub"
	"climactl/internal/occupancy"
	"climactl/internal/panel"
	"climactl/internal/weather"
	"climactl/pkg/appctx"
	"climactl/pkg/eventbus"
	"climactl/pkg/logger"
	"climactl/pkg/rootserv"
	"climactl/pkg/service"
	"climactl/pkg/sysmon"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

func main() {
	log := logger.New("Main")

	rootdir := os.Getenv("PROJECT_ROOT")
	if rootdir == "" {
		rootdir = "."
	}

	if err := logger.Init(filepath.Join(rootdir, "var/logs/climactl.log")); err != nil {
		log.Warn("log file disabled: %v", err)
	}

	appConf := config.LoadFile(filepath.Join(rootdir, "var/config/climactl.json"))

	rules, err := config.LoadRules(resolve(rootdir, appConf.Rules.File))
	if err != nil {
		log.Fatal("rules: %v", err)
	}
	engine, err := climate.NewEngine(rules.Thresholds)
	if err != nil {
		log.Fatal("engine: %v", err)
	}
	log.Info("profile %q, %s bands", rules.Profile, rules.Thresholds.Policy)

	appConf.APIKey, err = config.LoadSecrets(filepath.Join(rootdir, "var/config/.env"))
	if err != nil {
		log.Fatal("secrets: %v", err)
	}

	// use conf to pass eventbus to whoever needs it
	appConf.EventBus = eventbus.New()
	appConf.RootDir = rootdir

	provider, closeProvider, err := newProvider(appConf)
	if err != nil {
		log.Fatal("weather provider: %v", err)
	}

	ctx, ctxCancel := appctx.New()

	// init services
	server := rootserv.New(appConf.HTTP.Addr)
	sysMonitorService := sysmon.New(appConf.EventBus)
	weatherService := weather.New(provider, appConf.EventBus,
		time.Duration(appConf.Weather.PollIntervalSeconds)*time.Second)
	occupancyService := newOccupancy(appConf)
	advisorService := advisor.New(appConf.EventBus, engine, rules.Preferences, occupancyService.Occupied())
	panelService := panel.New(appConf.EventBus, advisorService, occupancyService)
	metricsService := metrics.New(appConf.EventBus)

	services := []service.Runnable{
		weatherService,
		occupancyService,
		advisorService,
		panelService,
		metricsService,
		server,
	}

	if appConf.MQTT.Broker != "" {
		pub, err := mqttpub.NewRealPublisher(appConf.MQTT.Broker, appConf.MQTT.ClientID, appConf.MQTT.Topic)
		if err != nil {
			log.Error("mqtt disabled: %v", err)
		} else {
			services = append(services, mqttpub.NewService(appConf.EventBus, pub))
		}
	}
	if appConf.DataLogger.EmonCMSAddr != "" {
		services = append(services, emoncms.New(advisorService, appConf.DataLogger))
	}

	// attach web handler enabled services
	server.Attach("/", "", http.RedirectHandler("/panel/", http.StatusTemporaryRedirect))
	server.Attach("/panel", "Climate Panel", panelService)
	server.Attach("/occupancy", "Occupancy", occupancyService)
	server.Attach("/weather", "Outdoor Conditions", weatherService)
	server.Attach("/logger", "Logger", logger.WebService("/logger"))
	server.Attach("/monitor", "System Monitor", sysMonitorService)
	server.Attach("/metrics", "Prometheus Metrics", metricsService)

	// start runnable services
	exitCh := service.Start(ctx, ctxCancel, services)

	// waits for all services to stop
	code := <-exitCh
	closeProvider()
	logger.Close()
	os.Exit(code)
}

func resolve(rootdir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootdir, path)
}

func newOccupancy(conf *config.Config) *occupancy.Service {
	svc := occupancy.New(conf.EventBus, conf.Occupancy.InitiallyOccupied())
	if conf.Occupancy.Mode == config.OccupancySimulated {
		svc.WithSimulator(occupancy.NewSimulator(conf.Occupancy.Probability, nil),
			time.Duration(conf.Occupancy.IntervalSeconds)*time.Second)
	}
	return svc
}
