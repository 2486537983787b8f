package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	PaymentURLExpanded = "expanded"
	PaymentURLCompact  = "compact"

	PaymentProviderCheckout    = "checkout"
	PaymentProviderMercadoPago = "mercadopago"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds every setting the backoffice and the tool server read from
// the environment.
type Config struct {
	Port string

	StoreDriver          string
	AWSRegion            string
	AWSAccessKeyID       string
	AWSSecretAccessKey   string
	DynamoDBEndpoint     string
	DynamoDBCreateTables bool
	DynamoDBTablePrefix  string
	DynamoDBTables       DynamoDBTables
	DatabaseURL          string
	SeedDemoData         bool

	CheckoutFrontendURL    string
	PublicBaseURL          string
	PaymentURLMode         string
	PaymentLinkProvider    string
	MercadoPagoAccessToken string
	MercadoPagoCurrency    string

	StockPolicy        string
	ProductSearchLimit int

	APIKey             string
	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string

	BackofficeBaseURL    string
	BackofficeTimeout    time.Duration
	BackofficeMaxRetries int
}

// DynamoDBTables holds the table names of the DynamoDB store. Each defaults to
// DYNAMODB_TABLE_PREFIX plus the base name and can be set with its own
// *_TABLE variable.
type DynamoDBTables struct {
	Users        string
	UserEmails   string
	Products     string
	ProductSKUs  string
	Carts        string
	OpenCarts    string
	CartItems    string
	Orders       string
	CheckoutKeys string
}

// Load reads the configuration from the process environment. Unknown enum
// values fall back to their default with a warning.
func Load() Config {
	return LoadFrom(os.Getenv)
}

// LoadFrom is Load with an explicit lookup, used by tests.
func LoadFrom(getenv func(string) string) Config {
	r := reader{getenv: getenv}
	prefix := r.str("DYNAMODB_TABLE_PREFIX", "")
	return Config{
		Port: r.str("PORT", "8080"),

		StoreDriver:          r.oneOf("STORE_DRIVER", StoreDynamoDB, StorePostgres, StoreMemory),
		AWSRegion:            r.str("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:       r.str("AWS_ACCESS_KEY_ID", "local"),
		AWSSecretAccessKey:   r.str("AWS_SECRET_ACCESS_KEY", "local"),
		DynamoDBEndpoint:     r.str("DYNAMODB_ENDPOINT", ""),
		DynamoDBCreateTables: r.boolean("DYNAMODB_CREATE_TABLES", false),
		DynamoDBTablePrefix:  prefix,
		DynamoDBTables: DynamoDBTables{
			Users:        r.str("USERS_TABLE", prefix+"users"),
			UserEmails:   r.str("USER_EMAILS_TABLE", prefix+"user_emails"),
			Products:     r.str("PRODUCTS_TABLE", prefix+"products"),
			ProductSKUs:  r.str("PRODUCT_SKUS_TABLE", prefix+"product_skus"),
			Carts:        r.str("CARTS_TABLE", prefix+"carts"),
			OpenCarts:    r.str("OPEN_CARTS_TABLE", prefix+"open_carts"),
			CartItems:    r.str("CART_ITEMS_TABLE", prefix+"cart_items"),
			Orders:       r.str("ORDERS_TABLE", prefix+"orders"),
			CheckoutKeys: r.str("CHECKOUT_KEYS_TABLE", prefix+"checkout_keys"),
		},
		DatabaseURL:  r.str("DATABASE_URL", ""),
		SeedDemoData: r.boolean("SEED_DEMO_DATA", false),

		CheckoutFrontendURL:    r.str("CHECKOUT_FRONTEND_URL", "http://localhost:8001/index.html"),
		PublicBaseURL:          strings.TrimRight(r.str("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		PaymentURLMode:         r.oneOf("PAYMENT_URL_MODE", PaymentURLExpanded, PaymentURLCompact),
		PaymentLinkProvider:    r.oneOf("PAYMENT_LINK_PROVIDER", PaymentProviderCheckout, PaymentProviderMercadoPago),
		MercadoPagoAccessToken: r.str("MERCADOPAGO_ACCESS_TOKEN", ""),
		MercadoPagoCurrency:    r.str("MERCADOPAGO_CURRENCY", "ARS"),

		StockPolicy:        r.oneOf("STOCK_POLICY", "increment", "line"),
		ProductSearchLimit: r.positiveInt("PRODUCT_SEARCH_LIMIT", 25),

		APIKey:             r.str("BACKOFFICE_API_KEY", ""),
		CORSAllowedOrigins: r.list("CORS_ALLOWED_ORIGINS"),

		LogLevel:  r.str("LOG_LEVEL", "info"),
		LogFormat: r.oneOf("LOG_FORMAT", LogFormatText, LogFormatJSON),

		BackofficeBaseURL:    strings.TrimRight(r.str("BACKOFFICE_BASE_URL", "http://localhost:8080"), "/"),
		BackofficeTimeout:    r.duration("BACKOFFICE_TIMEOUT", 5*time.Second),
		BackofficeMaxRetries: r.nonNegativeInt("BACKOFFICE_MAX_RETRIES", 2),
	}
}

type reader struct {
	getenv func(string) string
}

func (r reader) str(key, def string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return def
}

// oneOf returns the value when it is one of allowed, else allowed[0].
func (r reader) oneOf(key string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(r.getenv(key)))
	if v == "" {
		return allowed[0]
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	log.Warnf("[config] invalid value key=%s value=%q fallback=%s", key, v, allowed[0])
	return allowed[0]
}

func (r reader) boolean(key string, def bool) bool {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warnf("[config] invalid bool key=%s value=%q fallback=%t", key, v, def)
		return def
	}
	return b
}

func (r reader) positiveInt(key string, def int) int {
	n := r.nonNegativeInt(key, def)
	if n == 0 {
		return def
	}
	return n
}

func (r reader) nonNegativeInt(key string, def int) int {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Warnf("[config] invalid int key=%s value=%q fallback=%d", key, v, def)
		return def
	}
	return n
}

func (r reader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Plain numbers are seconds.
		secs, convErr := strconv.ParseFloat(v, 64)
		if convErr != nil || secs <= 0 {
			log.Warnf("[config] invalid duration key=%s value=%q fallback=%s", key, v, def)
			return def
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if d <= 0 {
		return def
	}
	return d
}

func (r reader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(r.getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
