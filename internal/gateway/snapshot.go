package gateway

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"lanebook/internal/model"
)

// Snapshot loads bookings for [from, to], business hours and packages
// concurrently and returns only once all three have arrived. Any failure fails
// the whole snapshot: availability is never computed from partial hours.
func (c *Client) Snapshot(ctx context.Context, from, to time.Time) (*model.Snapshot, error) {
	var (
		bookings []model.Booking
		hours    model.WeekHours
		pkgs     []model.Package
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = c.ListBookings(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		hours, err = c.ListBusinessHours(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pkgs, err = c.ListPackages(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load schedule snapshot: %w", err)
	}

	ResolvePackageCosts(bookings, model.NewPackageIndex(pkgs))

	// The backend filters by date, but a stale cache or a lenient filter may not.
	inRange := bookings[:0]
	for _, b := range bookings {
		if b.Date.IsZero() || model.DateBetween(b.Date, from, to) {
			inRange = append(inRange, b)
		}
	}

	return &model.Snapshot{
		From:     from,
		To:       to,
		Bookings: inRange,
		Hours:    hours,
		Packages: pkgs,
	}, nil
}
