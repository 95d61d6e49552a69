package constants

import "time"

// Redis Cache Configuration
// This file centralizes Redis cache keys and TTL values for the GoodFoods application
// Pattern: goodfoods:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

// Static Data (Long TTL: rarely changes)
const (
	TTL_STATIC_LONG = 24 * time.Hour // catalog snapshots; immutable between deploys
)

// Dynamic Data (Short TTL: changes frequently)
const (
	TTL_DYNAMIC_SHORT = 5 * time.Minute // search results
	TTL_DYNAMIC_QUICK = 1 * time.Minute // availability probes
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "goodfoods"
)

// ================== CATALOG MODULE ==================

const (
	CACHE_KEY_CATALOG_SEARCH = CACHE_PREFIX + ":catalog:search:" // + request digest
)

// ================== LEDGER MODULE ==================

// Bucket counters and reservation records live under these prefixes. They are
// authoritative state for the redis ledger backend, not cache, and are never
// expired.
const (
	KEY_LEDGER_BUCKET      = CACHE_PREFIX + ":ledger:bucket:"      // + venue:slot:size
	KEY_LEDGER_RESERVATION = CACHE_PREFIX + ":ledger:reservation:" // + confirmation code
	KEY_LEDGER_INDEX       = CACHE_PREFIX + ":ledger:index"        // set of confirmation codes
)
