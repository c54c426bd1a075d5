// Package reader implements the layered read strategy used by
// user-facing read paths: try the remote store first, fall back to the
// local store when the remote is unreachable or unconfigured, and fall
// back again to the bundled sample data when the local collection is
// empty. The remote failure reason is carried in the result for
// observability instead of being swallowed.
package reader

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mvaghela/bizbook/internal/model"
	"github.com/mvaghela/bizbook/internal/remote"
	"github.com/mvaghela/bizbook/internal/store"
)

// Source identifies where a read was ultimately served from.
type Source int

const (
	SourceRemote Source = iota
	SourceLocal
	SourceSample
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceLocal:
		return "local"
	case SourceSample:
		return "sample"
	default:
		return "unknown"
	}
}

// Info describes the outcome of a layered read. RemoteErr is non-nil
// whenever the remote store could not serve the read, even when the
// fallback succeeded.
type Info struct {
	Source    Source
	RemoteErr error
}

// Reader serves reads remote-first with local and sample fallback.
// A nil gateway means the remote store is not configured.
type Reader struct {
	gateway *remote.Gateway
	store   *store.Store
	logger  *slog.Logger
	limit   int
}

// New creates a reader. limit bounds remote fetches; 0 uses the
// gateway default. If logger is nil the default slog logger is used.
func New(gateway *remote.Gateway, st *store.Store, logger *slog.Logger, limit int) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{gateway: gateway, store: st, logger: logger, limit: limit}
}

// fetch runs one layered read. Remote failures fall back silently to
// local data for the caller, but permission failures are logged
// distinctly from plain unavailability.
func fetch[T any](r *Reader, fromRemote func(context.Context, int) ([]T, error), fromLocal []T, sample []T, ctx context.Context) ([]T, Info) {
	if r.gateway != nil {
		recs, err := fromRemote(ctx, r.limit)
		if err == nil {
			return recs, Info{Source: SourceRemote}
		}
		switch {
		case errors.Is(err, remote.ErrPermissionDenied):
			r.logger.Warn("remote read denied, falling back to local data", "error", err)
		default:
			r.logger.Debug("remote read failed, falling back to local data", "error", err)
		}
		if len(fromLocal) == 0 {
			return sample, Info{Source: SourceSample, RemoteErr: err}
		}
		return fromLocal, Info{Source: SourceLocal, RemoteErr: err}
	}

	info := Info{Source: SourceLocal, RemoteErr: remote.ErrUnavailable}
	if len(fromLocal) == 0 {
		info.Source = SourceSample
		return sample, info
	}
	return fromLocal, info
}

// Sales reads the sales collection, remote first.
func (r *Reader) Sales(ctx context.Context) ([]model.Sale, Info) {
	local := r.store.Export()
	return fetch(r, r.remoteSales, local.Sales, model.SampleSnapshot().Sales, ctx)
}

// Customers reads the customers collection, remote first.
func (r *Reader) Customers(ctx context.Context) ([]model.Customer, Info) {
	local := r.store.Export()
	return fetch(r, r.remoteCustomers, local.Customers, model.SampleSnapshot().Customers, ctx)
}

// Vehicles reads the vehicles collection, remote first.
func (r *Reader) Vehicles(ctx context.Context) ([]model.Vehicle, Info) {
	local := r.store.Export()
	return fetch(r, r.remoteVehicles, local.Vehicles, model.SampleSnapshot().Vehicles, ctx)
}

// Expenses reads the expenses collection, remote first.
func (r *Reader) Expenses(ctx context.Context) ([]model.Expense, Info) {
	local := r.store.Export()
	return fetch(r, r.remoteExpenses, local.Expenses, model.SampleSnapshot().Expenses, ctx)
}

// Reminders reads the reminders collection, remote first.
func (r *Reader) Reminders(ctx context.Context) ([]model.Reminder, Info) {
	local := r.store.Export()
	return fetch(r, r.remoteReminders, local.Reminders, model.SampleSnapshot().Reminders, ctx)
}

// Profile reads the profile, remote first, falling back to the local
// profile. There is no sample profile; absence is a valid state.
func (r *Reader) Profile(ctx context.Context) (*model.Profile, Info) {
	if r.gateway != nil {
		profile, err := r.gateway.FetchProfile(ctx)
		if err == nil {
			return profile, Info{Source: SourceRemote}
		}
		r.logger.Debug("remote profile read failed, falling back to local data", "error", err)
		return r.store.Profile(), Info{Source: SourceLocal, RemoteErr: err}
	}
	return r.store.Profile(), Info{Source: SourceLocal, RemoteErr: remote.ErrUnavailable}
}

func (r *Reader) remoteSales(ctx context.Context, limit int) ([]model.Sale, error) {
	return r.gateway.Sales(ctx, limit)
}

func (r *Reader) remoteCustomers(ctx context.Context, limit int) ([]model.Customer, error) {
	return r.gateway.Customers(ctx, limit)
}

func (r *Reader) remoteVehicles(ctx context.Context, limit int) ([]model.Vehicle, error) {
	return r.gateway.Vehicles(ctx, limit)
}

func (r *Reader) remoteExpenses(ctx context.Context, limit int) ([]model.Expense, error) {
	return r.gateway.Expenses(ctx, limit)
}

func (r *Reader) remoteReminders(ctx context.Context, limit int) ([]model.Reminder, error) {
	return r.gateway.Reminders(ctx, limit)
}
