package main

import (
	"context"
	"net"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/forum-platform/internal/platform/auth"
	"github.com/example/forum-platform/internal/platform/db"
	"github.com/example/forum-platform/internal/platform/httpserver"
	"github.com/example/forum-platform/internal/platform/logging"
	"github.com/example/forum-platform/internal/platform/mongodb"
	"github.com/example/forum-platform/internal/platform/natsconn"
	"github.com/example/forum-platform/internal/platform/run"
	"github.com/example/forum-platform/services/forum/internal/config"
	"github.com/example/forum-platform/services/forum/internal/events"
	"github.com/example/forum-platform/services/forum/internal/grpcapi"
	"github.com/example/forum-platform/services/forum/internal/handlers"
	"github.com/example/forum-platform/services/forum/internal/service"
	"github.com/example/forum-platform/services/forum/internal/store"
)

type stores struct {
	comments store.CommentStore
	posts    store.PostStore
	close    func(context.Context) error
}

func main() {
	cfg, err := config.LoadForum()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, zap.String("service", cfg.ServiceName))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	st, err := initStores(context.Background(), cfg, log)
	if err != nil {
		log.Error("store init", zap.String("backend", string(cfg.Backend)), zap.Error(err))
		_ = log.Sync()
		run.Exit(1)
	}

	pub, closeNATS := initEvents(cfg, log)

	comments := service.NewCommentService(st.comments, st.posts, pub, log)
	posts := service.NewPostService(st.posts, comments, pub, log)

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, every authenticated route will reject requests")
	}
	verifier := auth.JWTVerifier{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer, Leeway: 30 * time.Second}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: st.comments.Ping, Logger: log})
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		handlers.Mount(r, comments, posts, log)
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	var (
		grpcSrv *grpcapi.Server
		grpcLis net.Listener
	)
	if cfg.GRPCAddr != "" {
		grpcLis, err = net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Error("grpc listen", zap.Error(err))
			run.Exit(1)
		}
		grpcSrv = grpcapi.NewServer(st.comments, log)
	}

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Start(log) })
		if grpcSrv != nil {
			g.Go(func() error {
				log.Info("grpc server starting", zap.String("addr", cfg.GRPCAddr))
				return grpcSrv.GRPC.Serve(grpcLis)
			})
			g.Go(func() error {
				grpcSrv.Watch(ctx, cfg.HealthEvery)
				return nil
			})
		}
		// One listener failing takes the other down with it.
		g.Go(func() error {
			<-ctx.Done()
			if grpcSrv != nil {
				grpcSrv.GRPC.GracefulStop()
			}
			_ = srv.Shutdown(context.Background())
			return nil
		})
		return g.Wait()
	})

	runner.Graceful(
		srv.Shutdown,
		func(context.Context) error {
			if grpcSrv == nil {
				return nil
			}
			stopped := make(chan struct{})
			go func() {
				grpcSrv.GRPC.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
			case <-time.After(10 * time.Second):
				grpcSrv.GRPC.Stop()
			}
			return nil
		},
		func(context.Context) error {
			closeNATS()
			return nil
		},
		st.close,
	)

	log.Info("exit", zap.Int("code", code))
	_ = log.Sync()
	run.Exit(code)
}

// initStores opens the configured backend. Config loading already refused
// the memory backend in production.
func initStores(ctx context.Context, cfg config.ForumConfig, log *zap.Logger) (stores, error) {
	switch cfg.Backend {
	case config.BackendMongo:
		client, database, err := mongodb.Connect(ctx, mongodb.Options{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		if err != nil {
			return stores{}, err
		}
		cs := store.NewMongoCommentStore(database)
		ps := store.NewMongoPostStore(database)
		if err := cs.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return stores{}, err
		}
		if err := ps.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return stores{}, err
		}
		log.Info("forum store: mongo", zap.String("database", cfg.MongoDatabase))
		return stores{comments: cs, posts: ps, close: client.Disconnect}, nil

	case config.BackendPostgres:
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return stores{}, err
		}
		if err := store.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return stores{}, err
		}
		log.Info("forum store: postgres")
		return stores{
			comments: store.NewPostgresCommentStore(pool),
			posts:    store.NewPostgresPostStore(pool),
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	default:
		log.Warn("using in-memory forum store (development only)")
		return stores{
			comments: store.NewInMemoryCommentStore(),
			posts:    store.NewInMemoryPostStore(),
			close:    func(context.Context) error { return nil },
		}, nil
	}
}

// initEvents connects the JetStream publisher. Events are optional: without
// NATS_URL, or when NATS is unreachable, a no-op publisher is returned.
func initEvents(cfg config.ForumConfig, log *zap.Logger) (*events.Publisher, func()) {
	noop := func() {}
	if cfg.NATSURL == "" {
		log.Info("NATS_URL not set, event publishing disabled")
		return events.New(nil, log), noop
	}

	nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL, Name: cfg.ServiceName, Logger: log})
	if err != nil {
		log.Warn("nats connect failed, event publishing disabled", zap.Error(err))
		return events.New(nil, log), noop
	}
	js, err := nc.JetStream(nats.PublishAsyncMaxPending(256))
	if err != nil {
		nc.Close()
		log.Warn("jetstream unavailable, event publishing disabled", zap.Error(err))
		return events.New(nil, log), noop
	}
	if err := events.EnsureStream(js); err != nil {
		log.Warn("ensure FORUM stream", zap.Error(err))
	}
	log.Info("event publishing enabled", zap.String("stream", events.StreamName))
	return events.New(js, log), func() {
		select {
		case <-js.PublishAsyncComplete():
		case <-time.After(3 * time.Second):
			log.Warn("pending events dropped on shutdown", zap.Int("pending", js.PublishAsyncPending()))
		}
		nc.Close()
	}
}
