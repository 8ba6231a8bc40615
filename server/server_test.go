package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/searchviz/internal/profile"
	"github.com/hrygo/searchviz/plugin/eventclient"
	"github.com/hrygo/searchviz/store"
	"github.com/hrygo/searchviz/store/test"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestServer_EndToEnd(t *testing.T) {
	p := &profile.Profile{Mode: "dev", Addr: "127.0.0.1", Port: freePort(t), Version: "test"}
	require.NoError(t, p.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := NewServer(ctx, p, test.NewTestingStore(t))
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()

	base := fmt.Sprintf("http://%s", p.Address())
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	client := eventclient.New(eventclient.Config{URL: base + "/event"})
	events := []map[string]any{
		{"event_type": "SEARCH_START"},
		{"event_type": "NEW_NODE", "id": "root-0", "node_type": "root"},
		{"event_type": "NEW_NODE", "id": "opt-1", "node_type": "optimizer", "predecessor": "root-0", "specified_interface": "Optimizer"},
		{"event_type": "OPTIMIZER_UPDATE", "id": "opt-1", "score": -0.2},
		{"event_type": "WEIGHT_UPDATE", "from": "root-0", "to": "opt-1", "weight": 2.4},
	}
	for _, ev := range events {
		require.NoError(t, client.Send(ctx, ev))
	}

	var graph store.Graph
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/api/v1/graph")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		graph = store.Graph{}
		if err := json.NewDecoder(resp.Body).Decode(&graph); err != nil {
			return false
		}
		return len(graph.Edges) == 1 && graph.Edges[0].Width == 5
	}, 5*time.Second, 20*time.Millisecond)

	require.Len(t, graph.Nodes, 2)
	assert.Equal(t, "-0.200", graph.Nodes[1].Label)
	assert.Equal(t, store.ColorPink, graph.Nodes[1].Color)
	assert.Equal(t, "Optimizer", graph.Edges[0].Label)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_StartFailsOnBusyPort(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	p := &profile.Profile{Addr: "127.0.0.1", Port: l.Addr().(*net.TCPAddr).Port}
	require.NoError(t, p.Validate())

	s, err := NewServer(context.Background(), p, test.NewTestingStore(t))
	require.NoError(t, err)
	assert.Error(t, s.Start(context.Background()))
}
