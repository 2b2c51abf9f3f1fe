package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

var errNoJob = errors.New("exactly one of -categories, -attributes, -order or -next-item-number is required")

type job interface {
	name() string
	needsERP() bool
	run(ctx context.Context, app *application) error
}

func selectJob(categories, attributes bool, orderID int64, nextItemNumber bool) (job, error) {
	var selected []job
	if categories {
		selected = append(selected, categoryJob{})
	}
	if attributes {
		selected = append(selected, attributeJob{})
	}
	if orderID != 0 {
		if orderID < 0 {
			return nil, fmt.Errorf("invalid order id %d", orderID)
		}
		selected = append(selected, orderJob{orderID: orderID})
	}
	if nextItemNumber {
		selected = append(selected, itemNumberJob{})
	}
	if len(selected) != 1 {
		return nil, errNoJob
	}
	return selected[0], nil
}

type categoryJob struct{}

func (categoryJob) name() string   { return "categories" }
func (categoryJob) needsERP() bool { return true }

func (categoryJob) run(ctx context.Context, app *application) error {
	result, err := app.categories.Run(ctx)
	if err != nil {
		return err
	}
	app.logger.Info("Category export finished",
		zap.String("run_id", result.RunID),
		zap.Int("indexed_remote", result.IndexedRemote),
		zap.Int("created", result.Created),
		zap.Int("reused", result.Reused),
		zap.Int("translated", result.Translated),
		zap.Int("paths_rebuilt", result.PathsRebuilt),
		zap.Int("skipped", len(result.Skipped)),
		zap.Duration("duration", result.FinishedAt.Sub(result.StartedAt)),
	)
	return nil
}

type attributeJob struct{}

func (attributeJob) name() string   { return "attributes" }
func (attributeJob) needsERP() bool { return true }

func (attributeJob) run(ctx context.Context, app *application) error {
	result, err := app.attributes.Export(ctx)
	if err != nil {
		return err
	}
	app.logger.Info("Attribute export finished",
		zap.String("run_id", result.RunID),
		zap.Int("created", result.Created),
		zap.Int("reused", result.Reused),
	)
	return nil
}

type orderJob struct {
	orderID int64
}

func (orderJob) name() string   { return "order" }
func (orderJob) needsERP() bool { return true }

func (j orderJob) run(ctx context.Context, app *application) error {
	result, err := app.orders.Export(ctx, j.orderID)
	if result != nil {
		app.logger.Info("Order exported",
			zap.Int64("order_id", result.OrderID),
			zap.String("order_number", result.OrderNumber),
			zap.Int64("remote_order_id", result.RemoteOrderID),
			zap.Float64("remote_order_status", result.RemoteOrderStatus),
			zap.Bool("payment_booked", result.PaymentBooked),
		)
	}
	return err
}

type itemNumberJob struct{}

func (itemNumberJob) name() string   { return "next-item-number" }
func (itemNumberJob) needsERP() bool { return false }

func (itemNumberJob) run(ctx context.Context, app *application) error {
	number, err := app.itemNumbers.NextGenerated(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, number)
	return nil
}
