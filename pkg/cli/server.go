package cli

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/mchmarny/cardiorisk/pkg/config"
	"github.com/mchmarny/cardiorisk/pkg/logging"
	"github.com/mchmarny/cardiorisk/pkg/model"
	urfave "github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 30
	serverMaxHeaderBytes      = 20
)

var (
	//go:embed assets/* templates/*
	embedFS embed.FS

	addressFlag = &urfave.StringFlag{
		Name:  "address",
		Usage: "Address on which the server will listen (default: 0.0.0.0)",
	}

	portFlag = &urfave.IntFlag{
		Name:  "port",
		Usage: "Port on which the server will listen (default: $PORT or 8080)",
	}

	browserFlag = &urfave.BoolFlag{
		Name:  "browser",
		Usage: "Open the form in the default browser once the server is up",
	}

	serverCmd = &urfave.Command{
		Name:    "serve",
		Aliases: []string{"server"},
		Usage:   "Start the HTTP server with the web form and JSON API",
		Action:  cmdStartServer,
		Flags: append([]urfave.Flag{
			addressFlag,
			portFlag,
			browserFlag,
		}, modelFlags()...),
	}
)

func cmdStartServer(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(cmd)

	// the model is built once, before the listener starts
	m, err := loadModel(cmd)
	if err != nil {
		return err
	}

	conf := listenConfig(cfg.Conf, cmd)
	listen := conf.ListenAddress()

	logger := logging.NewServerLogger(os.Stdout, cfg.Conf.LogLevel)
	slog.SetDefault(logger)

	s := &http.Server{
		Addr:              listen,
		Handler:           makeRouter(m),
		ReadHeaderTimeout: serverTimeoutSeconds * time.Second,
		ReadTimeout:       serverTimeoutSeconds * time.Second,
		WriteTimeout:      serverTimeoutSeconds * time.Second,
		MaxHeaderBytes:    1 << serverMaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started", "address", listen, "model", m.Name, "nodes", m.Tree.Len())
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")

		sctx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
		defer cancel()

		if err := s.Shutdown(sctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error shutting down server: %w", err)
		}
		return nil
	})

	if cmd.Bool(browserFlag.Name) {
		openBrowser(fmt.Sprintf("http://%s", net.JoinHostPort(browserHost(conf.Address), strconv.Itoa(conf.Port))))
	}

	return g.Wait()
}

// listenConfig returns a copy of conf with the server flags applied.
func listenConfig(conf *config.Config, cmd *urfave.Command) *config.Config {
	c := *conf
	if cmd.IsSet(addressFlag.Name) {
		c.Address = cmd.String(addressFlag.Name)
	}
	if cmd.IsSet(portFlag.Name) {
		c.Port = cmd.Int(portFlag.Name)
	}
	return &c
}

func makeRouter(m *model.Model) http.Handler {
	tmpl := template.Must(template.New("").Funcs(templateFuncs()).ParseFS(embedFS, "templates/*.html"))
	assets, err := fs.Sub(embedFS, "assets")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(assets)))
	mux.HandleFunc("GET /favicon.ico", faviconHandler)

	// Views
	mux.HandleFunc("GET /{$}", indexViewHandler(tmpl))
	mux.HandleFunc("POST /predict", predictViewHandler(tmpl, m))
	mux.HandleFunc("GET /about", aboutViewHandler(tmpl, m))

	// API
	mux.HandleFunc("GET /health", healthAPIHandler(m))
	mux.HandleFunc("POST /api/v1/assess", assessAPIHandler(m))
	mux.HandleFunc("GET /api/v1/importance", importanceAPIHandler(m))
	mux.HandleFunc("GET /api/v1/metadata", metadataAPIHandler(m))

	return withRequestID(withLogging(mux))
}

func browserHost(address string) string {
	if address == "" || address == "0.0.0.0" || address == "::" {
		return "127.0.0.1"
	}
	return address
}

func openBrowser(url string) {
	var cmd string
	args := make([]string, 0, 1)

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
	case "linux":
		cmd = "xdg-open"
	default: // windows
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler"}
	}

	args = append(args, url)
	if err := exec.Command(cmd, args...).Start(); err != nil {
		slog.Error("failed to open browser", "error", err)
	}
}
