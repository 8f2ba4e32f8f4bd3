package sales

import (
	"context"
	"fmt"
	"io"

	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/sales"
	"golang.org/x/sync/errgroup"
)

// SalesSheetWriter renders sales as a spreadsheet
type SalesSheetWriter interface {
	WriteSales(w io.Writer, sales []sales.Sale) error
}

// StatsService aggregates delivered sales
type StatsService struct {
	saleRepo sales.Repository
	sheets   SalesSheetWriter
}

// NewStatsService creates a new StatsService
func NewStatsService(saleRepo sales.Repository, sheets SalesSheetWriter) *StatsService {
	return &StatsService{saleRepo: saleRepo, sheets: sheets}
}

// Summary returns revenue, sales, returns and outstanding amounts over
// delivered sales, plus a count per delivery status
func (s *StatsService) Summary(ctx context.Context, actor identity.Actor, req StatsRequest) (*StatsResponse, error) {
	filter := statsFilter(actor, req)

	var (
		amounts  sales.Amounts
		byStatus map[sales.DeliveryStatus]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		amounts, err = s.saleRepo.SumDelivered(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		byStatus, err = s.saleRepo.CountByStatus(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregate sales: %w", err)
	}

	resp := &StatsResponse{
		Revenue:     amounts.NetAmount,
		Sales:       amounts.TotalAmount,
		Returns:     amounts.ReturnTotal.Add(amounts.ReturnGlobal),
		Outstanding: amounts.NetAmount.Sub(amounts.AmountPaid),
		Delivered:   amounts.Count,
		ByStatus:    make(map[string]int64, len(byStatus)),
	}
	for status, n := range byStatus {
		resp.ByStatus[string(status)] = n
	}
	return resp, nil
}

// ExportSales writes the actor's sales matching req as a workbook
func (s *StatsService) ExportSales(ctx context.Context, actor identity.Actor, req StatsRequest, w io.Writer) error {
	list, err := s.saleRepo.ListForExport(ctx, statsFilter(actor, req))
	if err != nil {
		return err
	}
	return s.sheets.WriteSales(w, list)
}

func statsFilter(actor identity.Actor, req StatsRequest) sales.StatsFilter {
	return sales.StatsFilter{
		From:  req.From.StartPtr(),
		Until: req.To.EndPtr(),
		Scope: actor.StatsScope(req.SellerID),
	}
}
