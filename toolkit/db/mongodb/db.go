// toolkit/db/mongodb/db.go
package mongodb

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dalemusser/analysis/metrics"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Settings are the connection parameters read from process configuration.
type Settings struct {
	// URI is the connection string, e.g. "mongodb://localhost:27017".
	URI string

	// Database is the name of the database the handle selects.
	Database string
}

// SettingsFunc supplies Settings when the handle is first built. Any error it
// returns is reported to the caller as ErrConfiguration.
type SettingsFunc func() (Settings, error)

// Connector builds a client from options. mongo.Connect is the default.
type Connector func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)

func connect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	return mongo.Connect(ctx, opts)
}

// Option configures a Provider.
type Option func(*Provider)

// WithConnector replaces mongo.Connect as the client constructor.
func WithConnector(c Connector) Option {
	return func(p *Provider) {
		if c != nil {
			p.connect = c
		}
	}
}

// WithLogger sets the logger used to report initialization.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPing makes initialization eager: after the client is built, the
// primary is pinged with the given timeout and a failed ping is reported as
// ErrConnection. Without it, mongo.Connect does no network I/O and
// connectivity problems surface on first use of the handle.
func WithPing(timeout time.Duration) Option {
	return func(p *Provider) {
		p.pingTimeout = timeout
	}
}

// Provider hands out one shared *mongo.Database for the life of the process.
//
// The first successful call to Database builds the client and selects the
// database; every later call returns that same pointer. Concurrent first
// callers share a single construction. A failed construction is not cached,
// so the next call starts over.
//
// The Provider owns the client. Callers must not disconnect it.
type Provider struct {
	settings    SettingsFunc
	connect     Connector
	logger      *zap.Logger
	pingTimeout time.Duration

	db    atomic.Pointer[mongo.Database]
	group singleflight.Group
}

// NewProvider returns an uninitialized Provider. settings is not called until
// the first call to Database.
func NewProvider(settings SettingsFunc, opts ...Option) *Provider {
	p := &Provider{
		settings: settings,
		connect:  connect,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Initialized reports whether a handle has been built.
func (p *Provider) Initialized() bool {
	return p.db.Load() != nil
}

// Database returns the shared database handle, building it on first use.
//
// ctx bounds only this caller's wait. The construction itself runs detached
// from ctx's cancellation, so one impatient caller cannot fail the others
// waiting on the same construction.
func (p *Provider) Database(ctx context.Context) (*mongo.Database, error) {
	if db := p.db.Load(); db != nil {
		return db, nil
	}

	ch := p.group.DoChan("db", func() (any, error) {
		// A construction that finished between the Load above and this
		// flight starting has already stored its result.
		if db := p.db.Load(); db != nil {
			return db, nil
		}
		db, err := p.open(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		p.db.Store(db)
		return db, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*mongo.Database), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Provider) open(ctx context.Context) (*mongo.Database, error) {
	if p.settings == nil {
		metrics.ObserveDBHandleInit(metrics.DBInitConfigError)
		return nil, configError("no settings source")
	}
	s, err := p.settings()
	if err != nil {
		metrics.ObserveDBHandleInit(metrics.DBInitConfigError)
		return nil, wrapConfig(err)
	}
	if strings.TrimSpace(s.URI) == "" {
		metrics.ObserveDBHandleInit(metrics.DBInitConfigError)
		return nil, configError("connection uri is empty")
	}
	if strings.TrimSpace(s.Database) == "" {
		metrics.ObserveDBHandleInit(metrics.DBInitConfigError)
		return nil, configError("database name is empty")
	}

	clientOpts := options.Client().
		ApplyURI(s.URI).
		SetRegistry(NewRegistry())
	if err := clientOpts.Validate(); err != nil {
		metrics.ObserveDBHandleInit(metrics.DBInitConfigError)
		return nil, wrapConfig(err)
	}

	client, err := p.connect(ctx, clientOpts)
	if err != nil {
		metrics.ObserveDBHandleInit(metrics.DBInitConnectError)
		return nil, wrapConnection(err)
	}

	if p.pingTimeout > 0 {
		pingCtx, cancel := context.WithTimeout(ctx, p.pingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			metrics.ObserveDBHandleInit(metrics.DBInitConnectError)
			return nil, wrapConnection(err)
		}
	}

	metrics.ObserveDBHandleInit(metrics.DBInitOK)
	p.logger.Info("mongo handle initialized",
		zap.Strings("hosts", clientOpts.Hosts),
		zap.String("database", s.Database),
		zap.Bool("pinged", p.pingTimeout > 0),
	)
	return client.Database(s.Database), nil
}
