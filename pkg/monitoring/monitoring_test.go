package monitoring

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/webtools/peerlink/pkg/config"
	"github.com/webtools/peerlink/pkg/logger"
)

func TestMonitoring(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_hits_total", Help: "hits"})
	reg.MustRegister(c)
	c.Add(3)

	conf := config.Monitoring{Port: 0, URLPrefix: "/relay", MetricEnabled: true, ProfilingEnabled: true}
	m, err := New(conf, reg, logger.NewWriter(io.Discard, logger.Disabled))
	if err != nil {
		t.Fatal(err)
	}
	m.Run()
	defer func() { _ = m.Shutdown(context.Background()) }()

	base := "http://127.0.0.1:" + strconv.Itoa(m.Port()) + "/relay"
	tests := []struct {
		path string
		want string
	}{
		{path: "/metrics", want: "test_hits_total 3"},
		{path: "/debug/pprof/", want: "goroutine"},
	}
	for _, test := range tests {
		resp, err := http.Get(base + test.path)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), test.want) {
			t.Errorf("%v: %v, no %q", test.path, resp.StatusCode, test.want)
		}
	}
}
