package relayfx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/toyz/relay/pkg/relay"
)

type statusService interface {
	Status(ctx context.Context) (string, error)
}

func TestModule_ProvidesClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("X-Env")))
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	var client *relay.Client
	var store *relay.Store

	app := fxtest.New(t,
		fx.Supply(relay.Config{BaseURL: server.URL, Headers: map[string]string{"X-Env": "test"}}),
		fx.Provide(func() *zap.Logger { return zap.NewNop() }),
		fx.Provide(func() prometheus.Registerer { return reg }),
		Module,
		fx.Populate(&client, &store),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, client)
	assert.Same(t, store, client.Store())

	decl := relay.Declare[statusService]()
	decl.Method("Status", relay.GET("/status"))
	stub, err := client.Bind(decl)
	require.NoError(t, err)

	got, err := relay.Call[string](context.Background(), stub, "Status")
	require.NoError(t, err)
	assert.Equal(t, "test", got)
	count, err := testutil.GatherAndCount(reg, "relay_client_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestModule_InvalidConfigFailsStartup(t *testing.T) {
	app := fx.New(
		fx.NopLogger,
		fx.Supply(relay.Config{}),
		Module,
		fx.Invoke(func(*relay.Client) {}),
	)
	assert.ErrorContains(t, app.Err(), "base_url is required")
}
