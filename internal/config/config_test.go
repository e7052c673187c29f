package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("MONTHLY_PRICE", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("FRONTEND_URL", "")

	cfg := Load()
	if cfg.IsProduction() {
		t.Fatalf("expected development by default")
	}
	if cfg.StoreDriver != "memory" {
		t.Fatalf("expected memory store, got %s", cfg.StoreDriver)
	}
	if cfg.AdminIdentifier != "admin" || cfg.AdminPassword != "admin" {
		t.Fatalf("unexpected admin pair %s/%s", cfg.AdminIdentifier, cfg.AdminPassword)
	}
	if cfg.MonthlyPrice.String() != "49" || cfg.YearlyPrice.String() != "499" || cfg.AffiliateCommission.String() != "0.2" {
		t.Fatalf("unexpected pricing %s %s %s", cfg.MonthlyPrice, cfg.YearlyPrice, cfg.AffiliateCommission)
	}
	if !cfg.SeedDoctors {
		t.Fatalf("expected seeding enabled by default")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestLoadProduction(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("HOST", "https://api.lebdoc.com:443/v1")
	t.Setenv("ALLOWED_ORIGINS", "https://lebdoc.com, https://www.lebdoc.com")
	t.Setenv("MONTHLY_PRICE", "not-a-number")
	t.Setenv("SEED_DOCTORS", "false")

	cfg := Load()
	if !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
	if cfg.AllowedHost != "api.lebdoc.com" {
		t.Fatalf("unexpected allowed host %s", cfg.AllowedHost)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://www.lebdoc.com" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.MonthlyPrice.String() != "49" {
		t.Fatalf("invalid price should fall back to default, got %s", cfg.MonthlyPrice)
	}
	if cfg.SeedDoctors {
		t.Fatalf("expected seeding disabled")
	}
}
