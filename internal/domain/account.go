package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Account is a 20-byte address in its canonical "0x" + lower-case hex form.
type Account string

// ZeroAccount doubles as the unowned sentinel for tickets.
const ZeroAccount Account = "0x0000000000000000000000000000000000000000"

const accountHexLen = 40

// ParseAccount validates and normalizes an address string. Single-case
// input is accepted as is; mixed-case input must carry a valid EIP-55
// checksum.
func ParseAccount(s string) (Account, error) {
	s = strings.TrimSpace(s)
	if len(s) != accountHexLen+2 || (s[:2] != "0x" && s[:2] != "0X") {
		return "", ErrInvalidAccount
	}
	raw := s[2:]
	digits := strings.ToLower(raw)
	if _, err := hex.DecodeString(digits); err != nil {
		return "", ErrInvalidAccount
	}
	if raw != digits && raw != strings.ToUpper(raw) && raw != checksumDigits(digits) {
		return "", ErrInvalidAccount
	}
	return Account("0x" + digits), nil
}

// MustParseAccount is ParseAccount for constants and tests.
func MustParseAccount(s string) Account {
	a, err := ParseAccount(s)
	if err != nil {
		panic("domain: invalid account " + s)
	}
	return a
}

func (a Account) IsZero() bool {
	return a == "" || a == ZeroAccount
}

func (a Account) String() string {
	return string(a)
}

// Checksum renders the account in EIP-55 mixed-case form.
func (a Account) Checksum() string {
	if len(a) != accountHexLen+2 {
		return string(a)
	}
	return "0x" + checksumDigits(string(a[2:]))
}

// checksumDigits upper-cases each letter whose matching nibble of the
// Keccak-256 hash of the lower-case digits is 8 or more.
func checksumDigits(lower string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	sum := h.Sum(nil)

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}
