package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultReadTimeout     = 60 * time.Second
	DefaultWriteTimeout    = DefaultReadTimeout
	DefaultShutdownTimeout = 30 * time.Second

	gracefulEnvKey     = "GRAM_GRACEFUL"
	gracefulEnvValue   = gracefulEnvKey + "=1"
	gracefulListenerFD = 3
)

// Server wraps http.Server with signal driven shutdown. SIGTERM and SIGINT
// drain in-flight requests; SIGUSR2 hands the listener to a freshly started
// copy of the binary before draining.
type Server struct {
	*http.Server

	listener        net.Listener
	inherited       bool
	shutdownTimeout time.Duration
	onShutdown      []func()
	log             *zap.Logger
}

// NewServer creates a Server with timeouts and handler.
func NewServer(addr string, handler http.Handler, log *zap.Logger) *Server {
	if log == nil {
		log = Logger
	}
	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       DefaultReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      DefaultWriteTimeout,
		},
		inherited:       os.Getenv(gracefulEnvKey) != "",
		shutdownTimeout: DefaultShutdownTimeout,
		log:             log,
	}
}

// OnShutdown registers fn to run after the HTTP server has drained.
func (srv *Server) OnShutdown(fn func()) {
	srv.onShutdown = append(srv.onShutdown, fn)
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (srv *Server) Run(ctx context.Context) error {
	ln, err := srv.listen()
	if err != nil {
		return err
	}
	srv.listener = ln

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	restart := make(chan os.Signal, 1)
	signal.Notify(restart, syscall.SIGUSR2)
	defer signal.Stop(restart)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	srv.log.Info("http server listening", zap.String("addr", ln.Addr().String()), zap.Bool("inherited", srv.inherited))

	for {
		select {
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-restart:
			pid, err := srv.startNewProcess()
			if err != nil {
				srv.log.Error("start new process failed, continue serving", zap.Error(err))
				continue
			}
			srv.log.Info("new process started, draining old server", zap.Int("pid", pid))
			return srv.shutdown()
		case <-ctx.Done():
			srv.log.Info("shutting down http server")
			return srv.shutdown()
		}
	}
}

func (srv *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), srv.shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(ctx)
	for _, fn := range srv.onShutdown {
		fn()
	}
	if err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	srv.log.Info("http server stopped")
	return nil
}

func (srv *Server) listen() (net.Listener, error) {
	if srv.inherited {
		ln, err := net.FileListener(os.NewFile(gracefulListenerFD, ""))
		if err != nil {
			return nil, fmt.Errorf("inherit listener: %w", err)
		}
		return ln, nil
	}
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

// startNewProcess re-executes the binary with the listener passed as fd 3.
func (srv *Server) startNewProcess() (int, error) {
	tcpLn, ok := srv.listener.(*net.TCPListener)
	if !ok {
		return 0, errors.New("listener is not *net.TCPListener")
	}
	file, err := tcpLn.File()
	if err != nil {
		return 0, fmt.Errorf("get listener file: %w", err)
	}
	defer file.Close()

	envs := make([]string, 0, len(os.Environ())+1)
	for _, e := range os.Environ() {
		if e != gracefulEnvValue {
			envs = append(envs, e)
		}
	}
	envs = append(envs, gracefulEnvValue)

	pid, err := syscall.ForkExec(os.Args[0], os.Args, &syscall.ProcAttr{
		Env:   envs,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	})
	if err != nil {
		return 0, fmt.Errorf("forkexec: %w", err)
	}
	return pid, nil
}
