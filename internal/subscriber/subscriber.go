// Package subscriber implements the client-side quote consumer: it
// acquires a disposable credential, opens a broadcast subscription and
// feeds received quotes to display logic and the local journal. A
// subscription error is terminal for that subscription object; recovery
// always means a new credential and a new subscribe call.
package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"exchange_go/internal/domain"
	"exchange_go/internal/infra"

	"github.com/google/uuid"
)

// Subscriber is a long-lived consumer of broadcast quotes.
type Subscriber struct {
	id          string
	authURL     string
	tokens      domain.TokenIssuer
	broadcaster domain.QuoteBroadcaster
	journal     *Journal
	onQuote     func(domain.Quote)
	httpClient  *http.Client
	now         func() time.Time
}

// New creates a Subscriber. journal may be nil to disable local capture;
// onQuote may be nil, in which case quotes are only logged.
func New(authURL string, tokens domain.TokenIssuer, broadcaster domain.QuoteBroadcaster, journal *Journal, onQuote func(domain.Quote)) *Subscriber {
	return &Subscriber{
		id:          uuid.NewString(),
		authURL:     authURL,
		tokens:      tokens,
		broadcaster: broadcaster,
		journal:     journal,
		onQuote:     onQuote,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		now:         time.Now,
	}
}

// Run consumes quotes until the context is cancelled, re-establishing
// the subscription (new credential, new subscribe call) after every
// terminal error.
func (s *Subscriber) Run(ctx context.Context) {
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.cycle(ctx); err != nil {
			slog.Warn("subscription cycle ended", slog.Any("error", err), slog.Int("retry", retryCount))
			retryCount++
			delay := infra.CalculateBackoff(retryCount)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		} else {
			retryCount = 0
		}
	}
}

// cycle performs one credential + subscription lifetime: authenticate,
// redeem, subscribe, consume until the subscription terminates.
func (s *Subscriber) cycle(ctx context.Context) error {
	token, err := s.fetchToken(ctx)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	ok, err := s.tokens.Redeem(ctx, token)
	if err != nil {
		return fmt.Errorf("redeem: %w", err)
	}
	if !ok {
		return domain.ErrTokenRejected
	}

	sub, err := s.broadcaster.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Close()

	slog.Info("subscribed", slog.String("subscriber", s.id))
	s.consume(ctx, sub)

	if err := sub.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("subscription terminated: %w", err)
	}
	return ctx.Err()
}

// consume drains the subscription until its channel closes. Duplicate
// delivery of an identical quote is a no-op.
func (s *Subscriber) consume(ctx context.Context, sub domain.QuoteSubscription) {
	var last *domain.Quote
	for {
		select {
		case <-ctx.Done():
			return
		case quote, open := <-sub.Quotes():
			if !open {
				return
			}
			if last != nil && quote.Equal(*last) {
				continue
			}
			s.handle(quote)
			q := quote
			last = &q
		}
	}
}

func (s *Subscriber) handle(quote domain.Quote) {
	receivedAt := s.now()
	latency, hasAge := quote.Age(receivedAt)

	if hasAge {
		slog.Info("quote received",
			slog.Float64("best_bid", quote.BestBid),
			slog.Float64("best_ask", quote.BestAsk),
			slog.Int64("latency_ms", latency.Milliseconds()),
		)
	} else {
		slog.Info("quote received",
			slog.Float64("best_bid", quote.BestBid),
			slog.Float64("best_ask", quote.BestAsk),
		)
	}

	if s.journal != nil {
		if err := s.journal.Record(quote, receivedAt, latency); err != nil {
			slog.Warn("journal write failed", slog.Any("error", err))
		}
	}
	if s.onQuote != nil {
		s.onQuote(quote)
	}
}

// fetchToken asks the exchange API for a fresh disposable credential.
func (s *Subscriber) fetchToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.authURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.Token == "" {
		return "", fmt.Errorf("empty token in auth response")
	}
	return body.Token, nil
}
