package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"eatery/internal/mw"
	"eatery/internal/service"
)

type submitRequest struct {
	AddressBookID int64  `json:"address_book_id"`
	Remark        string `json:"remark,omitempty"`
}

func SubmitOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		receipt, err := orderSvc.Submit(r.Context(), userID, req.AddressBookID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidAddress), errors.Is(err, service.ErrEmptyCart):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				slog.Error("order submit failed", "user_id", userID, "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, receipt)
	}
}

type paymentRequest struct {
	OrderNumber string `json:"order_number"`
}

func RequestPaymentHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req paymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		handle, err := orderSvc.RequestPayment(r.Context(), userID, req.OrderNumber)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrAlreadyPaid):
				http.Error(w, "order already paid", http.StatusConflict)
			case errors.Is(err, service.ErrUnknownOrder):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				slog.Error("payment request failed", "number", req.OrderNumber, "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, handle)
	}
}

// SettlementCallbackHandler is invoked by the payment provider. Unknown
// order numbers are acknowledged as a no-op: the provider retries callbacks
// and an error would only make it retry harder.
func SettlementCallbackHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := orderSvc.ApplySettlement(r.Context(), req.OrderNumber); err != nil {
			if errors.Is(err, service.ErrUnknownOrder) {
				slog.Warn("settlement callback for unknown order", "number", req.OrderNumber)
				w.WriteHeader(http.StatusOK)
				return
			}
			slog.Error("settlement failed", "number", req.OrderNumber, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
