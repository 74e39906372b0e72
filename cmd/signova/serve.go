package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/signova/internal/app"
	"github.com/ayusman/signova/internal/gesture"
	"github.com/ayusman/signova/internal/server"
	"github.com/ayusman/signova/internal/tray"
)

func newServeCmd() *cobra.Command {
	var withTray bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(withTray)
		},
	}
	cmd.Flags().BoolVar(&withTray, "tray", false, "show a system tray menu")
	return cmd
}

func runServe(withTray bool) error {
	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	a, err := e.newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	staticDir := e.cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		e.log.WithField("dir", staticDir).Info("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		App:       a,
		Log:       e.log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !withTray {
		return srv.ListenAndServe(ctx, e.cfg.Server.Addr)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, e.cfg.Server.Addr)
	}()

	t := newTray(a, e.cfg.Server.Addr)
	t.OnQuit(stop)
	go func() {
		<-ctx.Done()
		a.Stop()
	}()
	t.Run()

	stop()
	return <-errCh
}

// newTray connects the tray menu to a.
func newTray(a *app.App, addr string) *tray.Tray {
	t := tray.New()

	t.OnToggle(func(capturing bool) error {
		if capturing {
			_, err := a.Start()
			return err
		}
		return a.Stop()
	})
	t.OnSpeak(func() { a.SpeakSentence() })
	t.OnClear(func() {
		a.ClearSentence()
		t.SetSentence("")
	})
	t.OnOpen(func() { openBrowser(localURL(addr)) })

	a.OnCommit(func(c gesture.Commit) {
		t.SetLastWord(strings.Join(c.Words, " "))
		t.SetSentence(a.Status("").Sentence)
	})
	a.OnStopped(func() { t.SetRunning(false) })

	return t
}

func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", url, err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "static", "web", "../web" and ~/.signova/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"static", "web", "../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(homeDir, ".signova", "web")
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return p
	}
	return ""
}
