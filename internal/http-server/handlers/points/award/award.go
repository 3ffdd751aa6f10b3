package award

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/greenleafpos/points-service/internal/models"
	"github.com/greenleafpos/points-service/internal/woocommerce"
	resp "github.com/greenleafpos/points-service/lib/api/response"
	"github.com/greenleafpos/points-service/lib/logger/sl"
)

type Request struct {
	OrderID    int64 `json:"orderId" validate:"required"`
	CustomerID int64 `json:"customerId,omitempty"`
}

type Awarder interface {
	Award(ctx context.Context, orderID, customerIDHint int64) (*models.Outcome, error)
}

func New(log *slog.Logger, service Awarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const fn = "handlers.points.award.New"

		log := log.With(
			slog.String("fn", fn),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode json body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("failed to decode request"))

			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err := validator.New().Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		outcome, err := service.Award(r.Context(), req.OrderID, req.CustomerID)
		if err != nil {
			var fetchErr *woocommerce.FetchError
			var adjustErr *woocommerce.AdjustError

			switch {
			case errors.As(err, &fetchErr):
				log.Error("failed to fetch order", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("failed to fetch order"))

			case errors.As(err, &adjustErr):
				log.Error("failed to adjust points", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("failed to adjust points"))

			default:
				log.Error("failed to award points", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("internal error"))
			}

			return
		}

		log.Info("award processed",
			slog.Bool("success", outcome.Success),
			slog.Int("points_awarded", outcome.PointsAwarded),
		)

		render.JSON(w, r, outcome)
	}
}
