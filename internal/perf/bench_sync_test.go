package perf

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/usersync/internal/syncctl"
	"github.com/odyssey-erp/usersync/internal/userapi"
	"github.com/odyssey-erp/usersync/internal/users"
)

func newController(b testing.TB, seed int) *syncctl.Controller {
	b.Helper()
	r := chi.NewRouter()
	users.NewHandler(nil, users.NewService(users.NewMemoryRepository())).MountRoutes(r)
	srv := httptest.NewServer(r)
	b.Cleanup(srv.Close)

	client := userapi.NewClient(srv.URL, srv.Client())
	for i := 0; i < seed; i++ {
		if _, err := client.CreateUser(context.Background(), userapi.Payload{
			Name:  fmt.Sprintf("user %d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
		}); err != nil {
			b.Fatalf("seed: %v", err)
		}
	}
	return syncctl.New(client, syncctl.Options{})
}

func BenchmarkLoad(b *testing.B) {
	ctrl := newController(b, 200)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := ctrl.Load(ctx); !res.OK() {
			b.Fatalf("load: %v", res.Err)
		}
	}
}

func BenchmarkCreateAndReload(b *testing.B) {
	ctrl := newController(b, 0)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctrl.SetCreateForm("bench", fmt.Sprintf("bench%d@example.com", i))
		if res := ctrl.Create(ctx); !res.OK() {
			b.Fatalf("create: %v", res.Err)
		}
	}
}

func TestCreateRoundTripLatency(t *testing.T) {
	ctrl := newController(t, 50)
	ctx := context.Background()

	samples := make([]time.Duration, 0, 20)
	for i := 0; i < cap(samples); i++ {
		ctrl.SetCreateForm("latency", fmt.Sprintf("latency%d@example.com", i))
		start := time.Now()
		if res := ctrl.Create(ctx); !res.OK() {
			t.Fatalf("create: %v", res.Err)
		}
		samples = append(samples, time.Since(start))
	}

	if p95 := percentile95(samples); p95 > 2*time.Second {
		t.Fatalf("create round trip regression: p95=%s", p95)
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	return sorted[index]
}
