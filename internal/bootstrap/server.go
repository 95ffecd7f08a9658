package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avialane/charterops/api"
	"github.com/avialane/charterops/config"
	"github.com/avialane/charterops/internal/repository"
	"github.com/avialane/charterops/internal/service/booking"
	"github.com/avialane/charterops/internal/service/scheduling"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, schedulingSvc scheduling.SchedulingUseCase, bookingSvc booking.BookingUseCase, resources repository.ResourceRepository) error {
	router := gin.Default()

	api.NewBookingHandler(bookingSvc).Register(router.Group("/bookings"))
	api.NewFleetHandler(schedulingSvc, resources).Register(router.Group("/fleet"))

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
