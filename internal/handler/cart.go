package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"eatery/internal/model"
	"eatery/internal/mw"
	"eatery/internal/service"
)

func AddToCartHandler(cartSvc *service.CartService) http.HandlerFunc {
	return cartMutation(cartSvc.Add)
}

func SubFromCartHandler(cartSvc *service.CartService) http.HandlerFunc {
	return cartMutation(cartSvc.Sub)
}

func cartMutation(op func(ctx context.Context, userID int64, ref model.CartItemRef) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var ref model.CartItemRef
		if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := op(r.Context(), userID, ref); err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCartItem), errors.Is(err, service.ErrUnknownProduct):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				slog.Error("cart mutation failed", "user_id", userID, "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func ListCartHandler(cartSvc *service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		lines, err := cartSvc.List(r.Context(), userID)
		if err != nil {
			slog.Error("cart list failed", "user_id", userID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, lines)
	}
}

func CleanCartHandler(cartSvc *service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := cartSvc.Clean(r.Context(), userID); err != nil {
			slog.Error("cart clean failed", "user_id", userID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
