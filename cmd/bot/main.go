package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"LadderPilot/internal/broker"
	"LadderPilot/internal/config"
	"LadderPilot/internal/driver"
	"LadderPilot/internal/notifier"
	"LadderPilot/internal/recorder"
	"LadderPilot/internal/runstate"
	"LadderPilot/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load .env before reading any environment overrides.
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}

	var (
		flagConfig = flag.String("config", cfgPath, "path to YAML config")
		flagHost   = flag.String("host", "", "gateway host (overrides config)")
		flagPort   = flag.Int("port", 0, "gateway port (overrides config)")
		flagSymbol = flag.String("symbol", "", "instrument code (overrides config)")
		flagBudget = flag.Float64("budget", 0, "total buy budget (overrides config)")
		flagState  = flag.String("state", "", "run-state file path (overrides config)")
		flagDays   = flag.Int("days", 0, "forward-test horizon in days (overrides config)")
		flagDaemon = flag.Bool("daemon", false, "stay resident and run cycles on the cron schedule")
		flagSim    = flag.Bool("sim", false, "use the in-memory sim venue instead of the gateway")
	)
	flag.Parse()

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if *flagHost != "" {
		cfg.Gateway.Host = *flagHost
	}
	if *flagPort != 0 {
		cfg.Gateway.Port = *flagPort
	}
	if *flagSymbol != "" {
		cfg.Strategy.Symbol = *flagSymbol
	}
	if *flagBudget != 0 {
		cfg.Strategy.Budget = *flagBudget
	}
	if *flagState != "" {
		cfg.State.File = *flagState
	}
	if *flagDays != 0 {
		cfg.Strategy.HorizonDays = *flagDays
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	log.Printf("[INFO] LadderPilot starting: %s, budget %.0f, horizon %dd",
		cfg.Strategy.Symbol, cfg.Strategy.Budget, cfg.Strategy.HorizonDays)

	// Init venue client
	var client broker.Client
	if *flagSim {
		client = broker.NewSimClient(100, cfg.Strategy.BarCount, cfg.Strategy.LotFallback)
	} else {
		client = broker.NewGatewayClient(cfg.Gateway.Host, cfg.Gateway.Port,
			time.Duration(cfg.Gateway.TimeoutSeconds)*time.Second, cfg.Proxy)
	}
	log.Printf("[INFO] venue: %s", client.Name())

	// Init notifier
	var n notifier.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = notifier.NewRetryNotifier(tn, 3)
		log.Println("[INFO] notifier: telegram")
	} else {
		n = notifier.NewStdoutNotifier()
		log.Println("[INFO] notifier: stdout")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	d := driver.New(cfg, client, runstate.NewStore(cfg.State.File), n, rec)

	// One-shot is the default: an external cron invokes the binary per cycle.
	if !*flagDaemon {
		if err := d.RunCycle(); err != nil {
			log.Fatalf("[FATAL] strategy cycle: %v", err)
		}
		return
	}

	sched := scheduler.NewScheduler(d)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing cycle now")
		go sched.RunNow()
	}

	log.Println("[INFO] LadderPilot is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
}
