package achievement

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"backend-rucktracker/internal/db"
)

const catalogCacheKey = "achievements:catalog"

// Catalog loads active achievement definitions from the database with a redis
// cache in front. The catalog is data, not code: editing a row and letting the
// cache TTL expire is how rules hot-reload.
type Catalog struct {
	db    db.Querier
	redis *redis.Client
	ttl   time.Duration
}

func NewCatalog(database db.Querier, redisClient *redis.Client, ttl time.Duration) *Catalog {
	return &Catalog{db: database, redis: redisClient, ttl: ttl}
}

// Active returns every active definition, cache first.
func (c *Catalog) Active(ctx context.Context) ([]Definition, error) {
	if c.redis != nil {
		raw, err := c.redis.Get(ctx, catalogCacheKey).Result()
		if err == nil {
			var defs []Definition
			if jsonErr := json.Unmarshal([]byte(raw), &defs); jsonErr == nil {
				return defs, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("achievement catalog cache read failed: %v", err)
		}
	}

	defs, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	if c.redis != nil {
		if raw, err := json.Marshal(defs); err == nil {
			if err := c.redis.Set(ctx, catalogCacheKey, raw, c.ttl).Err(); err != nil {
				log.Printf("achievement catalog cache write failed: %v", err)
			}
		}
	}
	return defs, nil
}

// ForUnitPreference returns the active definitions applicable to a user with
// the given display-unit preference.
func (c *Catalog) ForUnitPreference(ctx context.Context, unitPreference string) ([]Definition, error) {
	defs, err := c.Active(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]Definition, 0, len(defs))
	for _, d := range defs {
		if d.AppliesTo(unitPreference) {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

func (c *Catalog) load(ctx context.Context) ([]Definition, error) {
	rows, err := c.db.Query(ctx, `
		SELECT achievement_key, name, description, COALESCE(category, ''), COALESCE(tier, ''),
		       criteria, COALESCE(unit_preference, '')
		FROM achievements
		WHERE is_active = TRUE
		ORDER BY achievement_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []Definition
	for rows.Next() {
		var d Definition
		var rawCriteria []byte
		if err := rows.Scan(&d.Key, &d.Name, &d.Description, &d.Category, &d.Tier, &rawCriteria, &d.UnitPreference); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawCriteria, &d.Criteria); err != nil {
			// A malformed row must not take the whole catalog down.
			log.Printf("achievement %s has malformed criteria, skipping: %v", d.Key, err)
			continue
		}
		d.IsActive = true
		defs = append(defs, d)
	}
	return defs, rows.Err()
}
