package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/ledger/app/services/node/handlers"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/conf/v3"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web   webConfig
		State struct {
			NodeName       string        `conf:"default:kennedy"`
			DBPath         string        `conf:"default:zblock/"`
			Storage        string        `conf:"default:disk"`
			KnownPeers     []string      `conf:"default:0.0.0.0:9080;0.0.0.0:9180"`
			PeerTimeout    time.Duration `conf:"default:5s"`
			VerifyInterval time.Duration `conf:"default:1m"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "single node proof of work ledger",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for account ids.
	// The names come from the file names in the accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	// Logging the accounts for documentation in the logs.
	for _, name := range ns.Names() {
		accountID, _ := ns.AccountID(name)
		log.Infow("startup", "status", "nameservice", "name", name, "account", accountID)
	}

	// =========================================================================
	// Ledger Support

	// The node identity is the account credited with mining rewards. Without
	// a node name the node only answers queries.
	var nodeID database.AccountID
	if cfg.State.NodeName != "" {
		privateKey, err := crypto.LoadECDSA(nameservice.KeyFile(cfg.NameService.Folder, cfg.State.NodeName))
		if err != nil {
			return fmt.Errorf("unable to load private key for node: %w", err)
		}
		nodeID = database.PublicKeyToAccountID(privateKey.PublicKey)
	}
	log.Infow("startup", "status", "node identity", "name", cfg.State.NodeName, "account", nodeID)

	// Each node identity keeps its own snapshot.
	var strg database.Storage
	switch cfg.State.Storage {
	case "disk":
		strg, err = disk.New(cfg.State.DBPath, nodeID)
	case "bolt":
		strg, err = bolt.New(cfg.State.DBPath, nodeID)
	default:
		err = fmt.Errorf("unknown storage %q, expected disk or bolt", cfg.State.Storage)
	}
	if err != nil {
		return fmt.Errorf("unable to open storage: %w", err)
	}

	// A peer set is a collection of known nodes in the network so transactions
	// can be shared.
	peerSet := peer.NewPeerSet()
	for _, host := range cfg.State.KnownPeers {
		peerSet.Add(peer.New(host))
	}

	// The ledger packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The state value represents the ledger and provides an API for
	// application support.
	state, err := state.New(state.Config{
		NodeID:         nodeID,
		Host:           cfg.Web.PrivateHost,
		Storage:        strg,
		KnownPeers:     peerSet,
		PeerTimeout:    cfg.State.PeerTimeout,
		VerifyInterval: cfg.State.VerifyInterval,
		EvHandler:      ev,
	})
	if err != nil {
		return err
	}
	defer state.Shutdown()

	if err := state.IsHalted(); err != nil {
		log.Errorw("startup", "status", "ledger halted", "ERROR", err)
	}

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, state)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Start API Services

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	log.Infow("startup", "status", "initializing V1 API support")

	// The private API is listed first so it is the first to stop taking
	// transactions from peers on shutdown.
	apis := []api{
		{
			name: "private",
			server: newServer(cfg.Web, cfg.Web.PrivateHost, log, handlers.PrivateMux(handlers.MuxConfig{
				Shutdown: shutdown,
				Log:      log,
				State:    state,
			})),
		},
		{
			name: "public",
			server: newServer(cfg.Web, cfg.Web.PublicHost, log, handlers.PublicMux(handlers.MuxConfig{
				Shutdown: shutdown,
				Log:      log,
				State:    state,
				NS:       ns,
				Evts:     evts,
			})),
		},
	}

	// Make a channel to listen for errors coming from the listeners. Use a
	// buffered channel so the goroutines can exit if we don't collect the errors.
	serverErrors := make(chan error, len(apis))

	for _, a := range apis {
		go func(a api) {
			log.Infow("startup", "status", a.name+" api router started", "host", a.server.Addr)
			if err := a.server.ListenAndServe(); err != nil {
				serverErrors <- fmt.Errorf("%s api: %w", a.name, err)
			}
		}(a)
	}

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		for _, a := range apis {
			if err := a.shutdown(cfg.Web.ShutdownTimeout); err != nil {
				return err
			}
			log.Infow("shutdown", "status", a.name+" api stopped")
		}
	}

	return nil
}

// =============================================================================

// webConfig holds the listener settings shared by every server.
type webConfig struct {
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:60s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
	DebugHost       string        `conf:"default:0.0.0.0:7080"`
	PublicHost      string        `conf:"default:0.0.0.0:8080"`
	PrivateHost     string        `conf:"default:0.0.0.0:9080"`
}

// api is a named server started and stopped with the node.
type api struct {
	name   string
	server *http.Server
}

// shutdown asks the listener to shed load and gives outstanding requests
// until the timeout to complete.
func (a api) shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.server.Close()
		return fmt.Errorf("could not stop %s service gracefully: %w", a.name, err)
	}

	return nil
}

// newServer constructs a server for the mux on the specified host.
func newServer(cfg webConfig, host string, log *zap.SugaredLogger, mux http.Handler) *http.Server {
	return &http.Server{
		Addr:         host,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}
}
