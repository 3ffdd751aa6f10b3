package getaward

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/greenleafpos/points-service/internal/models"
	"github.com/greenleafpos/points-service/internal/storage"
	resp "github.com/greenleafpos/points-service/lib/api/response"
	"github.com/greenleafpos/points-service/lib/logger/sl"
)

type AwardGetter interface {
	AwardByOrderID(ctx context.Context, orderID int64) (*models.AwardRecord, error)
}

func New(log *slog.Logger, awards AwardGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const fn = "handlers.points.getaward.New"

		log := log.With(
			slog.String("fn", fn),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
		if err != nil {
			log.Error("invalid order id", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid order id"))

			return
		}

		rec, err := awards.AwardByOrderID(r.Context(), orderID)
		if errors.Is(err, storage.ErrNoAward) {
			log.Info("award not found", slog.Int64("order_id", orderID))

			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("award not found"))

			return
		}
		if err != nil {
			log.Error("failed to get award", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("failed to get award"))

			return
		}

		log.Info("got award successfully", slog.Int64("order_id", orderID))

		render.JSON(w, r, rec)
	}
}
