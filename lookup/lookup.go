// Package lookup resolves external account references into script hashes.
package lookup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ErrUnresolved is returned when the reference matches no known form.
var ErrUnresolved = errors.New("unresolved account reference")

// Resolver turns an account reference into the account script hash.
type Resolver interface {
	Resolve(ref string) (util.Uint160, error)
}

// Static resolves aliases, Neo addresses and little-endian hex script
// hashes (with optional 0x prefix), in that order.
type Static struct {
	aliases map[string]util.Uint160
}

// New returns Static resolver with the given aliases. Alias targets are
// resolved as addresses or hex script hashes; aliases can not refer to
// each other.
func New(aliases map[string]string) (*Static, error) {
	res := &Static{
		aliases: make(map[string]util.Uint160, len(aliases)),
	}

	for name, ref := range aliases {
		if name == "" {
			return nil, errors.New("empty alias name")
		}

		h, err := parse(ref)
		if err != nil {
			return nil, fmt.Errorf("alias '%s': %w", name, err)
		}

		res.aliases[name] = h
	}

	return res, nil
}

// Resolve implements Resolver.
func (s *Static) Resolve(ref string) (util.Uint160, error) {
	if h, ok := s.aliases[ref]; ok {
		return h, nil
	}

	return parse(ref)
}

func parse(ref string) (util.Uint160, error) {
	if h, err := address.StringToUint160(ref); err == nil {
		return h, nil
	}

	hexRef := strings.TrimPrefix(ref, "0x")
	if len(hexRef) == 2*util.Uint160Size {
		if h, err := util.Uint160DecodeStringLE(hexRef); err == nil {
			return h, nil
		}
	}

	return util.Uint160{}, fmt.Errorf("%w: '%s'", ErrUnresolved, ref)
}
