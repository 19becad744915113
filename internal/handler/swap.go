package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/f9-energy/market-engine/internal/pricing"
)

// QuoteArchiver persists issued quotes for audit; nil disables it.
type QuoteArchiver interface {
	SaveQuote(ctx context.Context, q *pricing.SwapQuote) error
}

type swapQuoteRequest struct {
	FromSourceID string  `json:"fromSourceId"`
	ToSourceID   string  `json:"toSourceId"`
	AmountKWh    float64 `json:"amountKWh"`
}

// SwapQuote issues a timed exchange quote between two sources.
func SwapQuote(engine *pricing.Engine, archive QuoteArchiver, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req swapQuoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.FromSourceID == "" || req.ToSourceID == "" {
			writeError(w, http.StatusBadRequest, "fromSourceId and toSourceId are required")
			return
		}
		if req.AmountKWh <= 0 {
			writeError(w, http.StatusBadRequest, "amountKWh must be positive")
			return
		}

		quote, err := engine.Quote(r.Context(), req.FromSourceID, req.ToSourceID, req.AmountKWh, time.Now())
		if err != nil {
			if errors.Is(err, pricing.ErrUnknownSource) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "quote failed")
			return
		}

		if archive != nil {
			if err := archive.SaveQuote(r.Context(), quote); err != nil {
				logger.Warn("archive quote failed", "quote_id", quote.ID, "error", err)
			}
		}

		writeJSON(w, http.StatusOK, quote)
	}
}

// SwapExecute validates a previously issued quote for settlement. Expired
// quotes are rejected with 410 Gone; the caller must re-quote.
func SwapExecute(engine *pricing.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var quote pricing.SwapQuote
		if err := json.NewDecoder(r.Body).Decode(&quote); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if quote.ID == "" || quote.ExpiresAt.IsZero() {
			writeError(w, http.StatusBadRequest, "quote id and expiry are required")
			return
		}

		if err := engine.Execute(&quote, time.Now()); err != nil {
			if errors.Is(err, pricing.ErrQuoteExpired) {
				writeError(w, http.StatusGone, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "execution failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"quote_id":    quote.ID,
			"executed":    true,
			"executed_at": time.Now().UTC(),
		})
	}
}
