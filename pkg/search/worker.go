package search

import "context"

// cancelCheckInterval is how many candidates a worker tests between context
// checks. Must be a power of two.
const cancelCheckInterval = 1 << 12

// TokenGenerator computes the code of a candidate secret at a fixed TOTP
// time step. *otp.Generator satisfies it.
type TokenGenerator interface {
	CodeAtCounter(secret []byte, counter uint64) (string, error)
}

// scan tests the iterations secrets following start, that is the range
// (start, start+iterations]. The value start itself is never tested.
// It returns the first secret whose code at counter equals token.
func scan(ctx context.Context, gen TokenGenerator, counter uint64, token string, start Secret, iterations uint64) (Secret, bool, error) {
	secret := start
	for i := uint64(0); i < iterations; i++ {
		if i&(cancelCheckInterval-1) == 0 {
			if err := ctx.Err(); err != nil {
				return Secret{}, false, err
			}
		}

		secret.Increment()
		code, err := gen.CodeAtCounter(secret[:], counter)
		if err != nil {
			return Secret{}, false, err
		}
		if code == token {
			return secret, true, nil
		}
	}
	return Secret{}, false, nil
}
