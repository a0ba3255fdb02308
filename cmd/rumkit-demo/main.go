package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voyago/rumkit"
	"github.com/voyago/rumkit/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional, env RUMKIT_* also read)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	ok, err := rumkit.NewOpenKit(
		cfg.ApplicationID,
		cfg.BeaconURL,
		rumkit.WithApplicationName(cfg.ApplicationName),
		rumkit.WithApplicationVersion(cfg.ApplicationVersion),
		rumkit.WithDeviceID(cfg.ResolvedDeviceIDOverride()),
		rumkit.WithPlatform(cfg.OperatingSystem, cfg.Manufacturer, ""),
		rumkit.WithPrivacy(
			config.ParseDataCollectionLevel(cfg.DataCollectionLevel),
			config.ParseCrashReportingLevel(cfg.CrashReportingLevel),
		),
		rumkit.WithLogConfig(cfg.Log),
		rumkit.WithTelemetry(cfg.Telemetry),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "create openkit:", err)
		os.Exit(1)
	}

	session := ok.CreateSession("")
	session.IdentifyUser("demo-user")

	root := session.EnterAction("app-start")
	root.ReportValueString("build", "demo")

	child := root.EnterAction("load-homepage")
	tracer := child.TraceWebRequest("https://example.com/api/products")
	tracer.Start()
	tracer.SetBytesSent(128)
	tracer.SetBytesReceived(4096)
	tracer.SetResponseCode(200)
	tracer.Stop()
	child.ReportEvent("homepage-rendered")
	child.LeaveAction()

	root.LeaveAction()

	session.SendEvent("page_view", map[string]any{
		"page": "home",
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case <-time.After(5 * time.Second):
	}

	session.End()
	ok.Shutdown()
}
