// Package relayfx wires a relay client into an fx application.
package relayfx

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/toyz/relay/pkg/relay"
	"github.com/toyz/relay/pkg/relay/instrument"
)

// Module provides a *relay.Store and a *relay.Client built from a relay.Config
var Module = fx.Module("relay",
	fx.Provide(
		NewStore,
		NewClient,
	),
)

// StoreParams are the dependencies of NewStore
type StoreParams struct {
	fx.In

	Logger *zap.Logger `optional:"true"`
}

// NewStore creates the metadata store shared by every client in the app
func NewStore(p StoreParams) *relay.Store {
	return relay.NewStore(relay.WithStoreLogger(loggerOrNop(p.Logger)))
}

// ClientParams are the dependencies of NewClient. Transport replaces the
// default HTTP transport and Registerer enables request metrics.
type ClientParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Config     relay.Config
	Store      *relay.Store
	Logger     *zap.Logger           `optional:"true"`
	Transport  relay.Transport       `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// NewClient creates the relay client from its configuration
func NewClient(p ClientParams) (*relay.Client, error) {
	logger := loggerOrNop(p.Logger)

	transport := p.Transport
	if transport == nil {
		transport = relay.NewHTTPTransport(&http.Client{Timeout: p.Config.Timeout})
	}
	if p.Registerer != nil {
		transport = instrument.NewMetrics(p.Registerer).Transport(transport, logger)
	}

	client, err := relay.NewClientFromConfig(p.Config,
		relay.WithLogger(logger),
		relay.WithStore(p.Store),
		relay.WithTransport(transport),
	)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("relay client ready", zap.String("base_url", client.BaseURL()))
			return nil
		},
	})
	return client, nil
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
