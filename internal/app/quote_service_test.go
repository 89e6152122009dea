package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-oasis/internal/domain"
	"github.com/jsamuelsen/quote-oasis/internal/mocks"
	"github.com/jsamuelsen/quote-oasis/internal/platform/telemetry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recorder is a FetchRecorder that remembers every call.
type recorder struct {
	mu    sync.Mutex
	calls [][2]string
}

func (r *recorder) RecordFetch(category, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, [2]string{category, outcome})
}

func TestNewQuoteService_PanicsWithoutQuoteClient(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteService(QuoteServiceConfig{Logger: slog.Default()})
	})
}

func TestNewQuoteService_DefaultsLogger(t *testing.T) {
	svc := NewQuoteService(QuoteServiceConfig{QuoteClient: mocks.NewMockQuoteClient(t)})
	require.NotNil(t, svc)
	assert.NotNil(t, svc.logger)
}

func TestQuoteService_FetchQuote(t *testing.T) {
	upstreamDown := domain.NewUnavailableError("quote-service", "unexpected HTTP 503")

	tests := []struct {
		name        string
		setupMock   func(*mocks.MockQuoteClient)
		want        *domain.Quote
		wantErr     error
		wantOutcome string
	}{
		{
			name: "success",
			setupMock: func(m *mocks.MockQuoteClient) {
				m.EXPECT().GetQuote(mock.Anything, domain.CategoryHappiness).
					Return(&domain.Quote{Text: "Be happy.", Author: "Anon"}, nil).Once()
			},
			want:        &domain.Quote{Text: "Be happy.", Author: "Anon"},
			wantOutcome: telemetry.OutcomeSuccess,
		},
		{
			name: "empty result",
			setupMock: func(m *mocks.MockQuoteClient) {
				m.EXPECT().GetQuote(mock.Anything, domain.CategoryHappiness).Return(nil, domain.ErrNoQuotes).Once()
			},
			wantErr:     domain.ErrNoQuotes,
			wantOutcome: telemetry.OutcomeEmpty,
		},
		{
			name: "upstream unavailable",
			setupMock: func(m *mocks.MockQuoteClient) {
				m.EXPECT().GetQuote(mock.Anything, domain.CategoryHappiness).Return(nil, upstreamDown).Once()
			},
			wantErr:     domain.ErrUnavailable,
			wantOutcome: telemetry.OutcomeUnavailable,
		},
		{
			name: "other error",
			setupMock: func(m *mocks.MockQuoteClient) {
				m.EXPECT().GetQuote(mock.Anything, domain.CategoryHappiness).Return(nil, errors.New("boom")).Once()
			},
			wantErr:     errors.New("boom"),
			wantOutcome: telemetry.OutcomeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mocks.NewMockQuoteClient(t)
			tt.setupMock(client)
			rec := &recorder{}

			svc := NewQuoteService(QuoteServiceConfig{QuoteClient: client, Recorder: rec, Logger: discardLogger()})

			got, err := svc.FetchQuote(context.Background(), domain.CategoryHappiness)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(err, tt.wantErr) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.EqualError(t, err, tt.wantErr.Error())
				}
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.Equal(t, [][2]string{{"happiness", tt.wantOutcome}}, rec.calls)
		})
	}
}

func TestQuoteService_FetchQuote_RejectsUnknownCategory(t *testing.T) {
	client := mocks.NewMockQuoteClient(t)
	svc := NewQuoteService(QuoteServiceConfig{QuoteClient: client, Logger: discardLogger()})

	_, err := svc.FetchQuote(context.Background(), domain.Category("sports"))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	client.AssertNotCalled(t, "GetQuote", mock.Anything, mock.Anything)
}

func TestQuoteService_FetchMany(t *testing.T) {
	client := mocks.NewMockQuoteClient(t)
	client.EXPECT().GetQuote(mock.Anything, domain.CategoryLife).
		Return(&domain.Quote{Text: "Life.", Author: "A"}, nil).Once()
	client.EXPECT().GetQuote(mock.Anything, domain.CategoryMoney).
		Return(nil, domain.ErrNoQuotes).Once()
	client.EXPECT().GetQuote(mock.Anything, domain.CategoryHealth).
		Return(&domain.Quote{Text: "Health.", Author: "B"}, nil).Once()

	svc := NewQuoteService(QuoteServiceConfig{QuoteClient: client, Logger: discardLogger()})

	results := svc.FetchMany(context.Background(),
		[]domain.Category{domain.CategoryLife, domain.CategoryMoney, domain.CategoryHealth}, 2)

	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "Life.", results[0].Value.Text)
	assert.ErrorIs(t, results[1].Err, domain.ErrNoQuotes)
	require.NoError(t, results[2].Err)
	assert.Equal(t, "B", results[2].Value.Author)
}

func TestParallelPartialLimit_BoundsConcurrency(t *testing.T) {
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	fn := func(context.Context) (int, error) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		mu.Lock()
		active--
		mu.Unlock()
		return 1, nil
	}

	fns := make([]func(context.Context) (int, error), 20)
	for i := range fns {
		fns[i] = fn
	}

	results := ParallelPartialLimit(context.Background(), 3, fns...)

	require.Len(t, results, 20)
	assert.LessOrEqual(t, maxSeen, 3)
	for _, r := range results {
		assert.Equal(t, 1, r.Value)
	}
}
