package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/prism-overlay/bwoverlay/internal/ratelimit"
)

const mojangProfileURL = "https://api.mojang.com/users/profiles/minecraft/"

// MojangClient resolves a username to its current account UUID.
type MojangClient struct {
	http    *http.Client
	limiter *ratelimit.Limiter
	burst   *rate.Limiter
}

func NewMojangClient(client *http.Client, limiter *ratelimit.Limiter) *MojangClient {
	return &MojangClient{http: client, limiter: limiter, burst: newBurstLimiter(5, 3)}
}

type mojangProfileResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ResolveUUID looks up the account UUID currently associated with
// username. A 404 from Mojang means no such account exists and is
// reported as a non-retryable NotFound error.
func (c *MojangClient) ResolveUUID(ctx context.Context, username string) (uuid.UUID, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return uuid.UUID{}, err
	}
	defer c.limiter.Release()
	if err := waitBurst(ctx, c.burst); err != nil {
		return uuid.UUID{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mojangProfileURL+username, nil)
	if err != nil {
		return uuid.UUID{}, newError(Unknown, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if looksLikeMissingLocalIssuer(err) {
			return uuid.UUID{}, newError(MissingLocalIssuer, err)
		}
		return uuid.UUID{}, newError(Transient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return uuid.UUID{}, newError(NotFound, fmt.Errorf("no account named %q", username))
	case resp.StatusCode == http.StatusTooManyRequests:
		return uuid.UUID{}, newError(Throttled, fmt.Errorf("mojang api rate limit"))
	case resp.StatusCode >= 500:
		return uuid.UUID{}, newError(Transient, fmt.Errorf("mojang api returned %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return uuid.UUID{}, newError(Unknown, fmt.Errorf("mojang api returned %d", resp.StatusCode))
	}

	var body mojangProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return uuid.UUID{}, newError(Unknown, err)
	}

	id, err := parseUndashedUUID(body.ID)
	if err != nil {
		return uuid.UUID{}, newError(Unknown, fmt.Errorf("parsing mojang uuid %q: %w", body.ID, err))
	}
	return id, nil
}

// parseUndashedUUID handles Mojang's habit of returning UUIDs without the
// standard dashes.
func parseUndashedUUID(raw string) (uuid.UUID, error) {
	if strings.Contains(raw, "-") {
		return uuid.Parse(raw)
	}
	if len(raw) != 32 {
		return uuid.UUID{}, fmt.Errorf("unexpected uuid length %d", len(raw))
	}
	dashed := fmt.Sprintf("%s-%s-%s-%s-%s", raw[0:8], raw[8:12], raw[12:16], raw[16:20], raw[20:32])
	return uuid.Parse(dashed)
}
