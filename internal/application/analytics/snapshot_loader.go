package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tirs/quota/internal/domain"
	"github.com/tirs/quota/internal/domain/entity"
	"github.com/tirs/quota/internal/domain/insights"
	"github.com/tirs/quota/internal/domain/repository"
)

// snapshotParts indica qué tablas leer para un cálculo.
type snapshotParts uint8

const (
	partCustomers snapshotParts = 1 << iota
	partProducts
	partQuotes
	partItems

	partsCore = partCustomers | partQuotes
	partsAll  = partCustomers | partProducts | partQuotes | partItems
)

// partErrors errores de lectura por tabla (lectura tolerante del tablero).
type partErrors struct {
	customers error
	products  error
	quotes    error
	items     error
}

// first devuelve el primer error en orden fijo de tablas.
func (e partErrors) first() error {
	for _, err := range []error{e.customers, e.products, e.quotes, e.items} {
		if err != nil {
			return err
		}
	}
	return nil
}

// loadSnapshot lee en paralelo las tablas pedidas. El primer error cancela el resto.
//
// Las lecturas son independientes entre sí; el cálculo arranca solo cuando todas
// terminaron, así que el resultado no depende del orden de llegada.
func (uc *InsightsUseCase) loadSnapshot(ctx context.Context, parts snapshotParts) (*insights.Snapshot, error) {
	start := time.Now()
	snap := &insights.Snapshot{AsOf: uc.now()}

	g, gctx := errgroup.WithContext(ctx)
	if parts&partCustomers != 0 {
		g.Go(func() error {
			rows, err := uc.customers.List(gctx)
			if err != nil {
				return fmt.Errorf("analytics.loadSnapshot: clientes: %w", err)
			}
			snap.Customers = rows
			return nil
		})
	}
	if parts&partProducts != 0 {
		g.Go(func() error {
			rows, err := uc.products.List(gctx)
			if err != nil {
				return fmt.Errorf("analytics.loadSnapshot: productos: %w", err)
			}
			snap.Products = rows
			return nil
		})
	}
	if parts&partQuotes != 0 {
		g.Go(func() error {
			rows, err := uc.quotes.List(gctx, repository.QuoteFilter{})
			if err != nil {
				return fmt.Errorf("analytics.loadSnapshot: cotizaciones: %w", err)
			}
			snap.Quotes = rows
			return nil
		})
	}
	if parts&partItems != 0 {
		g.Go(func() error {
			rows, err := uc.quotes.ListItems(gctx)
			if err != nil {
				return fmt.Errorf("analytics.loadSnapshot: líneas: %w", err)
			}
			snap.Items = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	uc.log.Debug().
		Int("customers", len(snap.Customers)).
		Int("quotes", len(snap.Quotes)).
		Int("items", len(snap.Items)).
		Dur("elapsed", time.Since(start)).
		Msg("snapshot cargado")
	return snap, nil
}

// readSnapshotTolerant lee las tablas del tablero sin cancelar las demás cuando una
// falla; cada error queda registrado por tabla para degradar solo las secciones afectadas.
func (uc *InsightsUseCase) readSnapshotTolerant(ctx context.Context, parts snapshotParts) (*insights.Snapshot, partErrors) {
	snap := &insights.Snapshot{AsOf: uc.now()}
	var errs partErrors

	var g errgroup.Group
	if parts&partCustomers != 0 {
		g.Go(func() error {
			snap.Customers, errs.customers = uc.customers.List(ctx)
			return nil
		})
	}
	if parts&partProducts != 0 {
		g.Go(func() error {
			snap.Products, errs.products = uc.products.List(ctx)
			return nil
		})
	}
	if parts&partQuotes != 0 {
		g.Go(func() error {
			snap.Quotes, errs.quotes = uc.quotes.List(ctx, repository.QuoteFilter{})
			return nil
		})
	}
	if parts&partItems != 0 {
		g.Go(func() error {
			snap.Items, errs.items = uc.quotes.ListItems(ctx)
			return nil
		})
	}
	_ = g.Wait()

	// Una tabla fallida queda vacía: las secciones que no dependen de ella siguen siendo válidas.
	if errs.customers != nil {
		snap.Customers = []*entity.Customer{}
	}
	if errs.quotes != nil {
		snap.Quotes = []*entity.Quote{}
	}
	return snap, errs
}

// requireCustomer resuelve el cliente o devuelve domain.ErrNotFound.
func (uc *InsightsUseCase) requireCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: customer_id requerido", domain.ErrInvalidInput)
	}
	c, err := uc.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("analytics.requireCustomer: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("cliente %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}
