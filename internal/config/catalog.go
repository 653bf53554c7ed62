// README: Pricing catalog loader (viper) with env override and hot reload.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"waslhaa/internal/modules/pricing"
	"waslhaa/internal/modules/zone"
	"waslhaa/internal/observability"
	"waslhaa/internal/types"
)

type pointFile struct {
	Lat float64 `mapstructure:"lat"`
	Lng float64 `mapstructure:"lng"`
}

type scheduleFile struct {
	BasePrice        float64            `mapstructure:"base_price"`
	PricePerKm       float64            `mapstructure:"price_per_km"`
	MinPrice         float64            `mapstructure:"min_price"`
	MaxPrice         float64            `mapstructure:"max_price"`
	SameVillagePrice float64            `mapstructure:"same_village_price"`
	MultiplyFlatFare bool               `mapstructure:"multiply_flat_fare"`
	Multipliers      map[string]float64 `mapstructure:"multipliers"`
}

type zoneFile struct {
	ID                string       `mapstructure:"id"`
	Name              string       `mapstructure:"name"`
	OperatorID        string       `mapstructure:"operator_id"`
	OperatorShareRate float64      `mapstructure:"operator_share_rate"`
	Center            pointFile    `mapstructure:"center"`
	Pricing           scheduleFile `mapstructure:"pricing"`
}

type villageFile struct {
	ID       string    `mapstructure:"id"`
	Name     string    `mapstructure:"name"`
	Center   pointFile `mapstructure:"center"`
	RadiusKm float64   `mapstructure:"radius_km"`
}

type catalogFile struct {
	Currency               string        `mapstructure:"currency"`
	PlatformCommissionRate float64       `mapstructure:"platform_commission_rate"`
	DefaultZone            string        `mapstructure:"default_zone"`
	Zones                  []zoneFile    `mapstructure:"zones"`
	Villages               []villageFile `mapstructure:"villages"`
}

// CatalogSource reads the pricing catalog from a YAML/JSON/TOML file.
// WASLHAA_PLATFORM_COMMISSION_RATE overrides the file's commission rate.
type CatalogSource struct {
	v *viper.Viper
}

func NewCatalogSource(path string) *CatalogSource {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("currency", "EGP")
	v.SetDefault("platform_commission_rate", 0.15)
	v.SetEnvPrefix(strings.TrimSuffix(envPrefix, "_"))
	_ = v.BindEnv("platform_commission_rate")
	return &CatalogSource{v: v}
}

// Load reads and validates the catalog.
func (s *CatalogSource) Load() (zone.Catalog, error) {
	if err := s.v.ReadInConfig(); err != nil {
		return zone.Catalog{}, fmt.Errorf("read pricing catalog: %w", err)
	}
	return s.decode()
}

func (s *CatalogSource) decode() (zone.Catalog, error) {
	var f catalogFile
	if err := s.v.Unmarshal(&f); err != nil {
		return zone.Catalog{}, fmt.Errorf("decode pricing catalog: %w", err)
	}
	c := zone.Catalog{
		Pricing:       pricing.Config{CommissionRate: f.PlatformCommissionRate, Currency: strings.ToUpper(f.Currency)},
		DefaultZoneID: f.DefaultZone,
	}
	for _, z := range f.Zones {
		c.Zones = append(c.Zones, zone.Zone{
			ID:                z.ID,
			Name:              z.Name,
			OperatorID:        z.OperatorID,
			OperatorShareRate: z.OperatorShareRate,
			Center:            types.Point{Lat: z.Center.Lat, Lng: z.Center.Lng},
			Pricing: pricing.Schedule{
				BasePrice:        z.Pricing.BasePrice,
				PricePerKm:       z.Pricing.PricePerKm,
				MinPrice:         z.Pricing.MinPrice,
				MaxPrice:         z.Pricing.MaxPrice,
				SameVillagePrice: z.Pricing.SameVillagePrice,
				MultiplyFlatFare: z.Pricing.MultiplyFlatFare,
				Multipliers:      multipliers(z.Pricing.Multipliers),
			},
		})
	}
	for _, v := range f.Villages {
		c.Villages = append(c.Villages, zone.Village{
			ID:       v.ID,
			Name:     v.Name,
			Center:   types.Point{Lat: v.Center.Lat, Lng: v.Center.Lng},
			RadiusKm: v.RadiusKm,
		})
	}
	if err := c.Validate(); err != nil {
		return zone.Catalog{}, err
	}
	return c, nil
}

// viper lowercases map keys, so vehicle names are normalised here.
func multipliers(in map[string]float64) map[types.VehicleType]float64 {
	out := make(map[types.VehicleType]float64, len(in))
	for k, v := range in {
		out[types.ParseVehicleType(k)] = v
	}
	return out
}

// Watch reloads the catalog whenever the file changes and hands valid
// catalogs to apply. Invalid edits are logged and the active catalog stays.
func (s *CatalogSource) Watch(log *slog.Logger, apply func(zone.Catalog) error) {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		c, err := s.decode()
		if err == nil {
			err = apply(c)
		}
		if err != nil {
			observability.CatalogReloadsTotal.WithLabelValues("rejected").Inc()
			log.Error("pricing catalog reload rejected", "file", e.Name, "error", err)
			return
		}
		observability.CatalogReloadsTotal.WithLabelValues("applied").Inc()
		log.Info("pricing catalog reloaded", "file", e.Name, "zones", len(c.Zones), "commission_rate", c.Pricing.CommissionRate)
	})
	s.v.WatchConfig()
}

// ApplyCatalog returns an apply func that swaps the registry and the engine config.
// Quotes read the platform config from the registry snapshot; the engine copy
// serves currency lookups.
func ApplyCatalog(reg *zone.Registry, engine *pricing.Engine) func(zone.Catalog) error {
	return func(c zone.Catalog) error {
		if err := reg.Replace(c); err != nil {
			return err
		}
		return engine.SetConfig(c.Pricing)
	}
}
