package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soar/joyd/internal/driver/hidapi"
	"github.com/soar/joyd/internal/driver/sdl3"
	"github.com/soar/joyd/internal/hints"
	"github.com/soar/joyd/internal/hub"
	"github.com/soar/joyd/internal/joystick"
	"github.com/soar/joyd/internal/server"
	"github.com/soar/joyd/internal/tray"
)

// Cross-platform signal handling: use os.Interrupt on all platforms
// On Windows: os.Interrupt is sent when Ctrl+C is pressed
// On Unix: os.Interrupt is equivalent to syscall.SIGINT
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func loadConfig() error {
	pflag.String("addr", ":8080", "HTTP listen address")
	pflag.Duration("poll-interval", 16*time.Millisecond, "device poll interval")
	pflag.Bool("background-events", false, "deliver input events while the application lacks focus")
	pflag.String("sensor-fusion", "", "sensor fusion for sensorless gamepads: boolean or 0xVID/0xPID list")
	pflag.String("ignore-devices", "", "devices to ignore, as a 0xVID/0xPID list")
	pflag.Bool("tray", runtime.GOOS == "windows", "show a system tray icon")
	pflag.String("config", "", "config file path")
	pflag.Parse()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return err
	}
	viper.SetEnvPrefix("joyd")
	viper.AutomaticEnv()

	if cfg := viper.GetString("config"); cfg != "" {
		viper.SetConfigFile(cfg)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	} else {
		viper.SetConfigName("joyd")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/joyd")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
		}
	}

	// Seed the joystick hints from configuration.
	if viper.GetBool("background-events") {
		hints.Set(hints.AllowBackgroundEvents, "1")
	}
	if v := viper.GetString("sensor-fusion"); v != "" {
		hints.Set(hints.SensorFusion, v)
	}
	if v := viper.GetString("ignore-devices"); v != "" {
		hints.Set(hints.IgnoreDevices, v)
	}
	return nil
}

// service adapts the registry to the hub's controller/snapshot interfaces.
type service struct {
	reg *joystick.Registry
}

func (s *service) Rumble(id joystick.InstanceID, low, high uint16, durationMS uint32) error {
	h := s.reg.HandleFromInstanceID(id)
	if h == nil {
		return joystick.ErrNotFound
	}
	return h.Rumble(low, high, durationMS)
}

func (s *service) SetPlayerIndex(id joystick.InstanceID, playerIndex int) error {
	return s.reg.SetPlayerIndexFor(id, playerIndex)
}

func (s *service) Snapshot() []hub.DeviceSnapshot {
	handles := s.reg.Handles()
	out := make([]hub.DeviceSnapshot, 0, len(handles))
	for _, h := range handles {
		playerIndex, err := h.PlayerIndex()
		if err != nil {
			continue
		}
		out = append(out, hub.DeviceSnapshot{
			Instance:    h.InstanceID(),
			Name:        h.Name(),
			GUID:        h.GUID().String(),
			Type:        h.Type().String(),
			PlayerIndex: playerIndex,
			Attached:    h.Attached(),
			IsGamepad:   h.IsGamepad(),
			Axes:        h.NumAxes(),
			Hats:        h.NumHats(),
			Buttons:     h.NumButtons(),
			Power:       h.PowerLevel().String(),
		})
	}
	return out
}

// runRegistry drives the registry on a locked OS thread: SDL wants its
// event pump single-threaded.
func runRegistry(ctx context.Context, reg *joystick.Registry, interval time.Duration) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := reg.Init(); err != nil {
		log.Fatalf("Joystick init failed: %v", err)
	}
	defer reg.Quit()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reg.Update()
			trackDevices(reg)
		}
	}
}

// trackDevices keeps a handle open for every attached device so its state
// is polled, and releases handles whose device went away.
func trackDevices(reg *joystick.Registry) {
	for _, id := range reg.Instances() {
		if reg.HandleFromInstanceID(id) != nil {
			continue
		}
		if _, err := reg.Open(id); err != nil {
			log.Printf("Open instance %d failed: %v", id, err)
		}
	}
	for _, h := range reg.Handles() {
		if !h.Attached() {
			h.Close()
		}
	}
}

func main() {
	if err := loadConfig(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	addr := viper.GetString("addr")

	// Create cancellable context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registryDone := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	reg := joystick.New(sdl3.New(), hidapi.New())
	svc := &service{reg: reg}

	// Create and start hub
	h := hub.NewHub()
	go h.Run()

	// Create broadcaster and wire it in as the registry's event sink
	broadcaster := hub.NewBroadcaster(h, svc)
	reg.SetSink(broadcaster)
	go broadcaster.Run(ctx)

	// Create and start HTTP server
	srv := server.New(h, broadcaster, svc, svc, addr)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	log.Printf("joyd started: http://localhost%s", addr)

	// Channel for tray-triggered shutdown
	shutdownRequested := make(chan struct{})

	if viper.GetBool("tray") {
		go func() {
			t := tray.New(addr, func() {
				close(shutdownRequested)
			})
			t.Run(tray.Icon())
		}()
	} else {
		log.Println("Press Ctrl+C to exit")
	}

	// Run the registry loop in a goroutine with a locked OS thread
	go func() {
		runRegistry(ctx, reg, viper.GetDuration("poll-interval"))
		close(registryDone)
	}()

	// Wait for shutdown signal, tray request, or server error
	select {
	case <-sigCh:
		log.Println("Shutting down...")
		cancel()
	case <-shutdownRequested:
		log.Println("Shutdown requested from tray")
		cancel()
	case err := <-serverErrCh:
		log.Printf("HTTP server error: %v", err)
		cancel()
	}

	// Wait for the registry loop to finish
	<-registryDone

	// Shutdown the HTTP server gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("joyd stopped")
}
