package gate

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
)

const (
	timestampField = "timestamp"
	nonceField     = "nonce"
)

// CredentialSource resolves the signing secret for a merchant.
type CredentialSource interface {
	SecretFor(ctx context.Context, merchantID uuid.UUID) (string, error)
}

// NonceStore burns a (merchant, nonce) pair exactly once within the TTL.
// Burn must be an atomic conditional set: it returns false when the pair was
// already present.
type NonceStore interface {
	Burn(ctx context.Context, merchantID uuid.UUID, nonce string, ttl time.Duration) (bool, error)
}

// Options tunes the freshness checks.
type Options struct {
	TimestampWindow time.Duration
	NonceTTL        time.Duration
	Now             func() time.Time
}

// Gate verifies that an inbound signed request originates from the named
// merchant and has not been replayed. All rejections surface as the same
// unauthorized error so callers cannot probe which sub-check failed.
type Gate struct {
	creds  CredentialSource
	nonces NonceStore
	window time.Duration
	ttl    time.Duration
	now    func() time.Time
}

// New builds a gate over the provided credential and nonce stores.
func New(creds CredentialSource, nonces NonceStore, opts Options) (*Gate, error) {
	if creds == nil {
		return nil, errors.New("credential source is required")
	}
	if nonces == nil {
		return nil, errors.New("nonce store is required")
	}
	if opts.TimestampWindow <= 0 {
		opts.TimestampWindow = 5 * time.Minute
	}
	if opts.NonceTTL <= opts.TimestampWindow {
		opts.NonceTTL = 2 * opts.TimestampWindow
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Gate{
		creds:  creds,
		nonces: nonces,
		window: opts.TimestampWindow,
		ttl:    opts.NonceTTL,
		now:    now,
	}, nil
}

func rejected() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "signature verification failed")
}

// Verify checks the request signature, the timestamp freshness window when a
// timestamp is carried, and burns the nonce when one is carried. The nonce is
// only consumed after the signature check passed, so a forged request can
// never burn a legitimate nonce.
func (g *Gate) Verify(ctx context.Context, merchantID uuid.UUID, params map[string]string) error {
	supplied := signatureOf(params)
	if supplied == "" {
		return rejected()
	}

	secret, err := g.creds.SecretFor(ctx, merchantID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return rejected()
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve merchant secret")
	}

	expected := Sign(params, secret)
	if !strings.EqualFold(expected, supplied) {
		return rejected()
	}

	// Back-compat: requests without a timestamp skip the freshness check.
	if raw, ok := params[timestampField]; ok && raw != "" {
		ts, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			return rejected()
		}
		drift := g.now().Sub(time.Unix(ts, 0))
		if drift < 0 {
			drift = -drift
		}
		if drift > g.window {
			return rejected()
		}
	}

	if nonce, ok := params[nonceField]; ok && nonce != "" {
		fresh, burnErr := g.nonces.Burn(ctx, merchantID, nonce, g.ttl)
		if burnErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, burnErr, "burn request nonce")
		}
		if !fresh {
			return rejected()
		}
	}

	return nil
}
