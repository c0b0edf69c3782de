package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/prism-overlay/bwoverlay/internal/player"
	"github.com/prism-overlay/bwoverlay/internal/ratelimit"
)

const winstreakEstimateURL = "https://api.antisniper.net/winstreak"

// WinstreakClient estimates hidden Bed Wars winstreaks via a third-party
// tracker when Hypixel's own API doesn't report them (the player has
// winstreak hidden in their Hypixel privacy settings).
type WinstreakClient struct {
	http    *http.Client
	limiter *ratelimit.Limiter
	keys    *APIKeyHolder
	burst   *rate.Limiter
}

func NewWinstreakClient(client *http.Client, limiter *ratelimit.Limiter, keys *APIKeyHolder) *WinstreakClient {
	return &WinstreakClient{http: client, limiter: limiter, keys: keys, burst: newBurstLimiter(1, 1)}
}

type winstreakEstimateResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Overall *int `json:"overall"`
		Solo    *int `json:"eight_one"`
		Doubles *int `json:"eight_two"`
		Threes  *int `json:"four_three"`
		Fours   *int `json:"four_four"`
	} `json:"data"`
}

// Estimate returns a best-effort winstreak estimate. Accurate is always
// false on the returned value: this is a heuristic, never authoritative.
func (c *WinstreakClient) Estimate(ctx context.Context, id uuid.UUID) (player.Winstreaks, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return player.Winstreaks{}, err
	}
	defer c.limiter.Release()
	if err := waitBurst(ctx, c.burst); err != nil {
		return player.Winstreaks{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, winstreakEstimateURL, nil)
	if err != nil {
		return player.Winstreaks{}, newError(Unknown, err)
	}
	q := req.URL.Query()
	q.Set("key", c.keys.Get())
	q.Set("uuid", id.String())
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		if looksLikeMissingLocalIssuer(err) {
			return player.Winstreaks{}, newError(MissingLocalIssuer, err)
		}
		return player.Winstreaks{}, newError(Transient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return player.Winstreaks{}, newError(Throttled, fmt.Errorf("winstreak estimator rate limit"))
	}
	if resp.StatusCode >= 500 {
		return player.Winstreaks{}, newError(Transient, fmt.Errorf("winstreak estimator returned %d", resp.StatusCode))
	}

	var body winstreakEstimateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return player.Winstreaks{}, newError(Unknown, err)
	}
	if !body.Success {
		return player.Winstreaks{}, newError(Unknown, fmt.Errorf("winstreak estimator reported failure"))
	}

	return player.Winstreaks{
		Overall:  body.Data.Overall,
		Solo:     body.Data.Solo,
		Doubles:  body.Data.Doubles,
		Threes:   body.Data.Threes,
		Fours:    body.Data.Fours,
		Accurate: false,
	}, nil
}
