// Package logger предоставляет кастомный middleware для логирования HTTP-запросов.
// Он использует структурированный логгер slog для вывода подробной информации
// о каждом входящем запросе и его результате.
package logger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// New создает и возвращает новый middleware для chi, который логирует запросы.
//
// Для каждого запроса в лог попадают метод, путь, удаленный адрес, user-agent
// и ID запроса, а после завершения обработки - статус ответа, количество
// записанных байт и длительность.
func New(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(
			slog.String("component", "middleware/logger"),
		)

		log.Info("logger middleware enabled")

		fn := func(w http.ResponseWriter, r *http.Request) {
			entry := log.With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			// Обертка над http.ResponseWriter, позволяющая узнать статус
			// и количество записанных байт после обработки.
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			t1 := time.Now()

			defer func() {
				entry.Info("request completed",
					slog.Int("status", ww.Status()),
					slog.Int("bytes", ww.BytesWritten()),
					slog.String("duration", time.Since(t1).String()),
				)
			}()

			next.ServeHTTP(ww, r)
		}

		return http.HandlerFunc(fn)
	}
}
