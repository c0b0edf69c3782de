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

const hypixelPlayerURL = "https://api.hypixel.net/v2/player"

// APIKeyHolder supplies an API key (Hypixel or Antisniper) for each request and lets the
// caller swap it out at runtime (the user can paste a new key mid-session).
type APIKeyHolder struct {
	key string
}

func NewAPIKeyHolder(key string) *APIKeyHolder { return &APIKeyHolder{key: key} }

func (h *APIKeyHolder) Get() string  { return h.key }
func (h *APIKeyHolder) Set(key string) { h.key = key }

// HypixelClient fetches a player's Bed Wars statistics.
type HypixelClient struct {
	http    *http.Client
	limiter *ratelimit.Limiter
	keys    *APIKeyHolder
	burst   *rate.Limiter
}

func NewHypixelClient(client *http.Client, limiter *ratelimit.Limiter, keys *APIKeyHolder) *HypixelClient {
	return &HypixelClient{http: client, limiter: limiter, keys: keys, burst: newBurstLimiter(2, 2)}
}

type hypixelPlayerResponse struct {
	Success bool   `json:"success"`
	Cause   string `json:"cause"`
	Player  *struct {
		Stats struct {
			Bedwars struct {
				Experience          float64 `json:"Experience"`
				Wins                int     `json:"wins_bedwars"`
				Losses              int     `json:"losses_bedwars"`
				Kills               int     `json:"kills_bedwars"`
				Deaths              int     `json:"deaths_bedwars"`
				FinalKills          int     `json:"final_kills_bedwars"`
				FinalDeaths         int     `json:"final_deaths_bedwars"`
				BedsBroken          int     `json:"beds_broken_bedwars"`
				BedsLost            int     `json:"beds_lost_bedwars"`
				Winstreak           *int    `json:"winstreak"`
			} `json:"Bedwars"`
		} `json:"stats"`
	} `json:"player"`
}

// GetBedwarsStats fetches and shapes one player's Bed Wars profile. A
// player whose profile has no Bed Wars section (never played, or stats
// hidden) decodes to zero counters and comes back as all-zero stats with no
// error; a UUID with no Hypixel profile at all is a NotFound error.
func (c *HypixelClient) GetBedwarsStats(ctx context.Context, id uuid.UUID) (*player.Stats, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.limiter.Release()
	if err := waitBurst(ctx, c.burst); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hypixelPlayerURL, nil)
	if err != nil {
		return nil, newError(Unknown, err)
	}
	q := req.URL.Query()
	q.Set("uuid", id.String())
	req.URL.RawQuery = q.Encode()
	req.Header.Set("API-Key", c.keys.Get())

	resp, err := c.http.Do(req)
	if err != nil {
		if looksLikeMissingLocalIssuer(err) {
			return nil, newError(MissingLocalIssuer, err)
		}
		return nil, newError(Transient, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusUnauthorized:
		return nil, newError(AuthInvalid, fmt.Errorf("hypixel api key rejected"))
	case http.StatusTooManyRequests:
		return nil, newError(Throttled, fmt.Errorf("hypixel api rate limit"))
	}
	if resp.StatusCode >= 500 {
		return nil, newError(Transient, fmt.Errorf("hypixel api returned %d", resp.StatusCode))
	}

	var body hypixelPlayerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, newError(Unknown, err)
	}
	if !body.Success {
		return nil, newError(Unknown, fmt.Errorf("hypixel api error: %s", body.Cause))
	}
	if body.Player == nil {
		return nil, newError(NotFound, fmt.Errorf("no hypixel profile for %s", id))
	}

	bw := body.Player.Stats.Bedwars
	streaks := player.Winstreaks{Overall: bw.Winstreak, Accurate: bw.Winstreak != nil}
	stats := player.NewStats(
		int(bw.Experience), bw.Wins, bw.Losses, bw.Kills, bw.Deaths,
		bw.FinalKills, bw.FinalDeaths, bw.BedsBroken, bw.BedsLost, streaks,
	)
	return &stats, nil
}
