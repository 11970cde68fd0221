// Package amount parses and renders the unit-suffixed numeric strings that
// cross the NEAR client boundary: token amounts (NEAR / yoctoNEAR) and gas
// (Tgas / yoctoGas).
package amount

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// YoctoPerNEAR is the number of yoctoNEAR in one NEAR (10^24).
var YoctoPerNEAR = uint256.MustFromDecimal("1000000000000000000000000")

// YoctoPerTgas is the number of gas units in one Tgas (10^12).
const YoctoPerTgas = uint64(1_000_000_000_000)

// nearDecimals is the number of fractional digits padded/truncated to when
// converting a decimal NEAR string to yoctoNEAR.
const nearDecimals = 24

// ParseNEAR parses a string of the form "<N> NEAR" or "<N> yocto"
// (case-insensitive unit, arbitrary surrounding whitespace) into a u128
// yoctoNEAR amount. Bare numeric strings with no unit are rejected: the
// caller must say which scale it means.
func ParseNEAR(s string) (*uint256.Int, error) {
	num, unit, err := splitUnit(s)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(unit) {
	case "yocto":
		v, err := uint256.FromDecimal(num)
		if err != nil {
			return nil, fmt.Errorf("amount: invalid yocto value %q: %w", num, err)
		}
		return v, nil
	case "near":
		return parseDecimalScaled(num, nearDecimals)
	default:
		return nil, fmt.Errorf("amount: unrecognized unit %q in %q", unit, s)
	}
}

// FromYoctoNEAR wraps a value already known to be in yoctoNEAR, e.g. one
// sourced programmatically rather than parsed from a user-facing string.
// Unlike ParseNEAR, no unit is required because the caller has already
// disambiguated the scale by choosing this constructor.
func FromYoctoNEAR(v *uint256.Int) *uint256.Int {
	return v.Clone()
}

// ParseGas parses a string of the form "<N> Tgas" (case-insensitive) or a
// bare integer, the latter interpreted directly as gas units.
func ParseGas(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if strings.HasSuffix(lower, "tgas") {
		num := strings.TrimSpace(s[:len(s)-len("tgas")])
		tg, err := strconv.ParseUint(num, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("amount: invalid Tgas value %q: %w", num, err)
		}
		gas := tg * YoctoPerTgas
		if tg != 0 && gas/YoctoPerTgas != tg {
			return 0, fmt.Errorf("amount: Tgas value %q overflows gas units", num)
		}
		return gas, nil
	}
	g, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount: invalid gas value %q: %w", s, err)
	}
	return g, nil
}

// splitUnit splits "<num> <unit>" on the first run of whitespace, requiring
// both parts to be present.
func splitUnit(s string) (num, unit string, err error) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool { return r == ' ' || r == '\t' })
	if i < 0 {
		return "", "", fmt.Errorf("amount: %q has no unit suffix; amounts must be explicit (NEAR or yocto)", s)
	}
	num = strings.TrimSpace(s[:i])
	unit = strings.TrimSpace(s[i:])
	if num == "" || unit == "" {
		return "", "", fmt.Errorf("amount: malformed quantity %q", s)
	}
	return num, unit, nil
}

// parseDecimalScaled parses a (possibly fractional) decimal string and
// scales it by 10^decimals, padding or truncating the fractional part to
// exactly that many digits.
func parseDecimalScaled(num string, decimals int) (*uint256.Int, error) {
	neg := strings.HasPrefix(num, "-")
	if neg {
		return nil, fmt.Errorf("amount: negative amount %q not allowed", num)
	}
	whole, frac, hasFrac := strings.Cut(num, ".")
	if whole == "" {
		whole = "0"
	}
	if !hasFrac {
		frac = ""
	}
	if len(frac) > decimals {
		frac = frac[:decimals] // truncate excess precision
	} else {
		frac = frac + strings.Repeat("0", decimals-len(frac))
	}
	digits := whole + frac
	if digits == "" {
		digits = "0"
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("amount: invalid decimal value %q: %w", num, err)
	}
	return v, nil
}

// ToNEARString renders a yoctoNEAR amount as a decimal NEAR string with up
// to 24 fractional digits, trimming trailing zeros.
func ToNEARString(yocto *uint256.Int) string {
	s := yocto.Dec()
	for len(s) <= nearDecimals {
		s = "0" + s
	}
	whole := s[:len(s)-nearDecimals]
	frac := strings.TrimRight(s[len(s)-nearDecimals:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
