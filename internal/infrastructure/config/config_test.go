package config

import (
	"testing"
	"time"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg := LoadFrom(envFrom(nil))

	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.StoreDriver != StoreDynamoDB {
		t.Fatalf("expected dynamodb store, got %q", cfg.StoreDriver)
	}
	if cfg.CheckoutFrontendURL != "http://localhost:8001/index.html" {
		t.Fatalf("unexpected checkout url %q", cfg.CheckoutFrontendURL)
	}
	if cfg.PaymentURLMode != PaymentURLExpanded || cfg.PaymentLinkProvider != PaymentProviderCheckout {
		t.Fatalf("unexpected payment defaults: %q %q", cfg.PaymentURLMode, cfg.PaymentLinkProvider)
	}
	if cfg.StockPolicy != "increment" {
		t.Fatalf("expected increment stock policy, got %q", cfg.StockPolicy)
	}
	if cfg.ProductSearchLimit != 25 {
		t.Fatalf("expected search limit 25, got %d", cfg.ProductSearchLimit)
	}
	if cfg.BackofficeTimeout != 5*time.Second || cfg.BackofficeMaxRetries != 2 {
		t.Fatalf("unexpected backoffice defaults: %s %d", cfg.BackofficeTimeout, cfg.BackofficeMaxRetries)
	}
	if cfg.APIKey != "" || cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected auth and cors disabled")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg := LoadFrom(envFrom(map[string]string{
		"PORT":                   "9000",
		"STORE_DRIVER":           "Postgres",
		"PUBLIC_BASE_URL":        "https://shop.example.com/",
		"PAYMENT_URL_MODE":       "compact",
		"STOCK_POLICY":           "line",
		"BACKOFFICE_TIMEOUT":     "2.5",
		"BACKOFFICE_MAX_RETRIES": "0",
		"CORS_ALLOWED_ORIGINS":   "http://a.test, http://b.test,,",
		"DYNAMODB_CREATE_TABLES": "true",
	}))

	if cfg.Port != "9000" || cfg.StoreDriver != StorePostgres {
		t.Fatalf("unexpected port/store: %q %q", cfg.Port, cfg.StoreDriver)
	}
	if cfg.PublicBaseURL != "https://shop.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.PublicBaseURL)
	}
	if cfg.PaymentURLMode != PaymentURLCompact || cfg.StockPolicy != "line" {
		t.Fatalf("unexpected enums: %q %q", cfg.PaymentURLMode, cfg.StockPolicy)
	}
	if cfg.BackofficeTimeout != 2500*time.Millisecond {
		t.Fatalf("expected 2.5s timeout, got %s", cfg.BackofficeTimeout)
	}
	if cfg.BackofficeMaxRetries != 0 {
		t.Fatalf("expected retries disabled, got %d", cfg.BackofficeMaxRetries)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.DynamoDBCreateTables {
		t.Fatalf("expected create tables enabled")
	}
}

func TestLoadFrom_InvalidValuesFallBack(t *testing.T) {
	cfg := LoadFrom(envFrom(map[string]string{
		"STORE_DRIVER":          "mongo",
		"PAYMENT_LINK_PROVIDER": "paypal",
		"STOCK_POLICY":          "strict",
		"PRODUCT_SEARCH_LIMIT":  "-3",
		"BACKOFFICE_TIMEOUT":    "soon",
		"LOG_FORMAT":            "xml",
	}))

	if cfg.StoreDriver != StoreDynamoDB {
		t.Fatalf("expected dynamodb fallback, got %q", cfg.StoreDriver)
	}
	if cfg.PaymentLinkProvider != PaymentProviderCheckout {
		t.Fatalf("expected checkout fallback, got %q", cfg.PaymentLinkProvider)
	}
	if cfg.StockPolicy != "increment" {
		t.Fatalf("expected increment fallback, got %q", cfg.StockPolicy)
	}
	if cfg.ProductSearchLimit != 25 {
		t.Fatalf("expected limit fallback, got %d", cfg.ProductSearchLimit)
	}
	if cfg.BackofficeTimeout != 5*time.Second {
		t.Fatalf("expected timeout fallback, got %s", cfg.BackofficeTimeout)
	}
	if cfg.LogFormat != LogFormatText {
		t.Fatalf("expected text fallback, got %q", cfg.LogFormat)
	}
}

func TestLoadFrom_DynamoDBTables(t *testing.T) {
	cfg := LoadFrom(envFrom(map[string]string{
		"DYNAMODB_TABLE_PREFIX": "dev_",
		"CARTS_TABLE":           "legacy_carts",
	}))

	if cfg.DynamoDBTables.Users != "dev_users" || cfg.DynamoDBTables.CheckoutKeys != "dev_checkout_keys" {
		t.Fatalf("expected prefixed names, got %+v", cfg.DynamoDBTables)
	}
	if cfg.DynamoDBTables.Carts != "legacy_carts" {
		t.Fatalf("expected override, got %q", cfg.DynamoDBTables.Carts)
	}

	plain := LoadFrom(envFrom(nil))
	if plain.DynamoDBTables.OpenCarts != "open_carts" {
		t.Fatalf("unexpected default %q", plain.DynamoDBTables.OpenCarts)
	}
}
