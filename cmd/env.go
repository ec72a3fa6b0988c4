package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/parkhaus/parking-cli/internal/catalog"
	"github.com/parkhaus/parking-cli/internal/config"
	"github.com/parkhaus/parking-cli/internal/resolver"
	"github.com/parkhaus/parking-cli/internal/store"
	"github.com/parkhaus/parking-cli/internal/ticket"
	"github.com/parkhaus/parking-cli/pkg/geocode"
	"github.com/parkhaus/parking-cli/pkg/sms"
)

// env bundles the wired application components for a command invocation.
type env struct {
	Catalog  *catalog.Catalog
	Resolver *resolver.Resolver
	Manager  *ticket.Manager
	Store    store.Store
}

// initEnv wires catalog, store, providers, resolver and lifecycle manager
// from the loaded config.
func initEnv(ctx context.Context) (*env, error) {
	cat, err := catalog.New(cfg.Catalog.Path, cfg.Catalog.DefaultRadiusM)
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	providers := buildProviders(cfg.Resolver.Providers)

	res := resolver.New(cat, providers,
		resolver.WithNearestMaxDistance(cfg.Resolver.NearestMaxDistanceM),
	)

	manager := ticket.NewManager(st, buildTransport(cfg.SMS),
		ticket.WithMaxDurationHours(cfg.Ticket.MaxDurationHours),
		ticket.WithSweepInterval(cfg.Ticket.SweepInterval()),
	)
	manager.Restore(ctx)

	return &env{
		Catalog:  cat,
		Resolver: res,
		Manager:  manager,
		Store:    st,
	}, nil
}

// Close releases the environment's resources.
func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("store close failed", zap.Error(err))
		}
	}
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// buildProviders constructs the reverse-geocode cascade in config order.
// Unknown provider names are logged and skipped so a config typo does not
// take the whole resolver down.
func buildProviders(pcs []config.ProviderConfig) []geocode.ReverseProvider {
	var out []geocode.ReverseProvider
	for _, pc := range pcs {
		switch pc.Name {
		case "nominatim":
			out = append(out, geocode.NewNominatimProvider(pc.UserAgent,
				geocode.WithNominatimBaseURL(pc.BaseURL),
				geocode.WithNominatimTimeout(pc.Timeout()),
				geocode.WithNominatimRateLimit(pc.RateRPS),
			))
		case "google":
			out = append(out, geocode.NewGoogleProvider(pc.APIKey,
				geocode.WithGoogleBaseURL(pc.BaseURL),
				geocode.WithGoogleTimeout(pc.Timeout()),
			))
		default:
			zap.L().Warn("unknown reverse-geocode provider, skipping",
				zap.String("name", pc.Name),
			)
		}
	}
	return out
}

func buildTransport(c config.SMSConfig) sms.Transport {
	if c.GatewayURL == "" {
		return sms.LogTransport{}
	}
	return sms.NewGatewayClient(c.GatewayURL, c.APIKey,
		sms.WithSender(c.Sender),
		sms.WithTimeout(time.Duration(c.TimeoutSecs)*time.Second),
	)
}
