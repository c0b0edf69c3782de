package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/prism-overlay/bwoverlay/internal/ratelimit"
)

const denickLookupURL = "https://api.antisniper.net/denick"

// DenickClient resolves a nick to the real account behind it via a
// third-party tracking service, used as a fallback when the local nick
// database and the auto-denick heuristic can't identify a nicked player.
type DenickClient struct {
	http    *http.Client
	limiter *ratelimit.Limiter
	keys    *APIKeyHolder
	burst   *rate.Limiter
}

func NewDenickClient(client *http.Client, limiter *ratelimit.Limiter, keys *APIKeyHolder) *DenickClient {
	return &DenickClient{http: client, limiter: limiter, keys: keys, burst: newBurstLimiter(1, 1)}
}

type denickLookupResponse struct {
	Success bool `json:"success"`
	Data    struct {
		UUID string `json:"uuid"`
	} `json:"data"`
}

// Lookup returns the account UUID behind nick, or a NotFound *Error if the
// service has no record of it.
func (c *DenickClient) Lookup(ctx context.Context, nick string) (uuid.UUID, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return uuid.UUID{}, err
	}
	defer c.limiter.Release()
	if err := waitBurst(ctx, c.burst); err != nil {
		return uuid.UUID{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, denickLookupURL, nil)
	if err != nil {
		return uuid.UUID{}, newError(Unknown, err)
	}
	q := req.URL.Query()
	q.Set("key", c.keys.Get())
	q.Set("player", nick)
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		if looksLikeMissingLocalIssuer(err) {
			return uuid.UUID{}, newError(MissingLocalIssuer, err)
		}
		return uuid.UUID{}, newError(Transient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return uuid.UUID{}, newError(Throttled, fmt.Errorf("denick lookup rate limit"))
	}
	if resp.StatusCode >= 500 {
		return uuid.UUID{}, newError(Transient, fmt.Errorf("denick lookup returned %d", resp.StatusCode))
	}

	var body denickLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return uuid.UUID{}, newError(Unknown, err)
	}
	if !body.Success || body.Data.UUID == "" {
		return uuid.UUID{}, newError(NotFound, fmt.Errorf("no known owner for nick %q", nick))
	}

	id, err := parseUndashedUUID(body.Data.UUID)
	if err != nil {
		return uuid.UUID{}, newError(Unknown, fmt.Errorf("parsing denick uuid: %w", err))
	}
	return id, nil
}
