package subscriber

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"exchange_go/internal/domain"
)

type fakeSubscription struct {
	quotes chan domain.Quote
	mu     sync.Mutex
	err    error
}

func (f *fakeSubscription) Quotes() <-chan domain.Quote { return f.quotes }

func (f *fakeSubscription) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeSubscription) Close() error { return nil }

func (f *fakeSubscription) terminate(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
	close(f.quotes)
}

type fakeBroadcaster struct {
	sub          *fakeSubscription
	subscribeErr error
	subscribes   int
}

func (f *fakeBroadcaster) Publish(ctx context.Context, quote domain.Quote) error { return nil }

func (f *fakeBroadcaster) Subscribe(ctx context.Context) (domain.QuoteSubscription, error) {
	f.subscribes++
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	return f.sub, nil
}

type fakeIssuer struct {
	mu       sync.Mutex
	redeemed []string
	accept   bool
}

func (f *fakeIssuer) Issue(ctx context.Context) (string, error) { return "", nil }

func (f *fakeIssuer) Redeem(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redeemed = append(f.redeemed, token)
	return f.accept, nil
}

func newAuthServer(t *testing.T, tokens ...string) *httptest.Server {
	t.Helper()
	i := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokens[i%len(tokens)]
		i++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token": "` + token + `"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func quoteAt(bid float64, observed string) domain.Quote {
	return domain.Quote{BestBid: bid, BestAsk: bid + 100, OriginTime: observed, ObservedAt: observed}
}

func TestSubscriber_Cycle(t *testing.T) {
	t.Run("Consumes In Order And Drops Duplicates", func(t *testing.T) {
		auth := newAuthServer(t, "tok-1")
		sub := &fakeSubscription{quotes: make(chan domain.Quote, 8)}
		bc := &fakeBroadcaster{sub: sub}
		issuer := &fakeIssuer{accept: true}

		var received []domain.Quote
		s := New(auth.URL, issuer, bc, nil, func(q domain.Quote) {
			received = append(received, q)
		})

		q1 := quoteAt(1000000, "2024-03-01T12:00:00Z")
		q2 := quoteAt(1000010, "2024-03-01T12:00:01Z")
		sub.quotes <- q1
		sub.quotes <- q2
		sub.quotes <- q2 // duplicate delivery
		sub.terminate(domain.ErrConnectionFailed)

		err := s.cycle(context.Background())
		if err == nil || !errors.Is(err, domain.ErrConnectionFailed) {
			t.Fatalf("expected terminal subscription error, got %v", err)
		}

		if len(received) != 2 {
			t.Fatalf("received %d quotes, want 2 (duplicate dropped)", len(received))
		}
		if !received[0].Equal(q1) || !received[1].Equal(q2) {
			t.Errorf("quotes out of order: %+v", received)
		}
		if len(issuer.redeemed) != 1 || issuer.redeemed[0] != "tok-1" {
			t.Errorf("expected tok-1 to be redeemed, got %v", issuer.redeemed)
		}
	})

	t.Run("New Credential Per Cycle", func(t *testing.T) {
		auth := newAuthServer(t, "tok-1", "tok-2")
		issuer := &fakeIssuer{accept: true}
		bc := &fakeBroadcaster{}

		sub1 := &fakeSubscription{quotes: make(chan domain.Quote)}
		sub1.terminate(domain.ErrConnectionFailed)
		bc.sub = sub1
		s := New(auth.URL, issuer, bc, nil, nil)
		_ = s.cycle(context.Background())

		sub2 := &fakeSubscription{quotes: make(chan domain.Quote)}
		sub2.terminate(domain.ErrConnectionFailed)
		bc.sub = sub2
		_ = s.cycle(context.Background())

		if len(issuer.redeemed) != 2 || issuer.redeemed[0] == issuer.redeemed[1] {
			t.Errorf("each cycle must redeem a fresh credential, got %v", issuer.redeemed)
		}
		if bc.subscribes != 2 {
			t.Errorf("each cycle must open a new subscription, got %d", bc.subscribes)
		}
	})

	t.Run("Rejected Credential Aborts The Cycle", func(t *testing.T) {
		auth := newAuthServer(t, "stale-token")
		issuer := &fakeIssuer{accept: false}
		bc := &fakeBroadcaster{}

		s := New(auth.URL, issuer, bc, nil, nil)
		err := s.cycle(context.Background())
		if !errors.Is(err, domain.ErrTokenRejected) {
			t.Fatalf("expected ErrTokenRejected, got %v", err)
		}
		if bc.subscribes != 0 {
			t.Error("must not subscribe with a rejected credential")
		}
	})

	t.Run("Auth Failure Aborts The Cycle", func(t *testing.T) {
		broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(broken.Close)

		s := New(broken.URL, &fakeIssuer{accept: true}, &fakeBroadcaster{}, nil, nil)
		if err := s.cycle(context.Background()); err == nil {
			t.Fatal("expected error from failed auth")
		}
	})

	t.Run("Empty Token Is An Error", func(t *testing.T) {
		auth := newAuthServer(t, "")
		s := New(auth.URL, &fakeIssuer{accept: true}, &fakeBroadcaster{}, nil, nil)
		if err := s.cycle(context.Background()); err == nil {
			t.Fatal("expected error for empty token")
		}
	})
}
