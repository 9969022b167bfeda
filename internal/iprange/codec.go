// Package iprange parses, validates, and renders IP range expressions.
//
// Three input forms are accepted: a single address ("10.10.10.10"), a
// hyphenated pair ("10.10.10.0 - 10.10.12.255"), and CIDR notation
// ("10.10.10.0/24"). All three normalize to an inclusive (start, end) pair
// of addresses. Endpoints convert to and from fixed-width binary (4 bytes
// for IPv4, 16 for IPv6) so the store can compare ranges as raw bytes.
package iprange

import (
	"fmt"
	"net/netip"
	"strings"
)

// ParseError reports an IP range expression that could not be parsed.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse ip range %q: %s", e.Input, e.Reason)
}

// Parse normalizes an IP range expression into inclusive start/end
// endpoints. It guarantees start <= end and that both endpoints belong to
// the same address family.
func Parse(text string) (start, end netip.Addr, err error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return netip.Addr{}, netip.Addr{}, &ParseError{Input: text, Reason: "empty expression"}
	}

	switch {
	case strings.Contains(trimmed, "/"):
		return parseCIDR(trimmed)
	case strings.Contains(trimmed, "-"):
		return parseHyphenated(trimmed)
	default:
		addr, perr := parseAddr(trimmed)
		if perr != nil {
			return netip.Addr{}, netip.Addr{}, &ParseError{Input: text, Reason: perr.Error()}
		}
		return addr, addr, nil
	}
}

func parseCIDR(text string) (netip.Addr, netip.Addr, error) {
	prefix, err := netip.ParsePrefix(text)
	if err != nil {
		return netip.Addr{}, netip.Addr{}, &ParseError{Input: text, Reason: "invalid CIDR notation"}
	}
	start := prefix.Masked().Addr()
	return start, lastAddr(prefix), nil
}

func parseHyphenated(text string) (netip.Addr, netip.Addr, error) {
	parts := strings.SplitN(text, "-", 2)
	start, err := parseAddr(strings.TrimSpace(parts[0]))
	if err != nil {
		return netip.Addr{}, netip.Addr{}, &ParseError{Input: text, Reason: "invalid start address"}
	}
	end, err := parseAddr(strings.TrimSpace(parts[1]))
	if err != nil {
		return netip.Addr{}, netip.Addr{}, &ParseError{Input: text, Reason: "invalid end address"}
	}
	if start.Is4() != end.Is4() {
		return netip.Addr{}, netip.Addr{}, &ParseError{Input: text, Reason: "mixed address families"}
	}
	if end.Less(start) {
		return netip.Addr{}, netip.Addr{}, &ParseError{Input: text, Reason: "end address precedes start address"}
	}
	return start, end, nil
}

func parseAddr(text string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(text)
	if err != nil {
		return netip.Addr{}, err
	}
	if addr.Zone() != "" {
		return netip.Addr{}, fmt.Errorf("zoned address not allowed")
	}
	return addr.Unmap(), nil
}

// lastAddr returns the final address of the prefix's block: the masked
// address with every host bit set.
func lastAddr(prefix netip.Prefix) netip.Addr {
	raw := prefix.Masked().Addr().AsSlice()
	bits := prefix.Bits()
	for i := range raw {
		hostBits := (i+1)*8 - bits
		if hostBits <= 0 {
			continue
		}
		if hostBits > 8 {
			hostBits = 8
		}
		raw[i] |= byte(0xff >> (8 - hostBits))
	}
	addr, _ := netip.AddrFromSlice(raw)
	return addr
}

// Format renders the canonical display form of a range: the single address
// when start == end, otherwise "<start> - <end>".
func Format(start, end netip.Addr) string {
	if start == end {
		return start.String()
	}
	return start.String() + " - " + end.String()
}

// Title renders the range title, always as "<start> - <end>" regardless of
// the input form the range was created from. This is the only title source.
func Title(start, end netip.Addr) string {
	return start.String() + " - " + end.String()
}

// Bytes returns the fixed-width binary form of an endpoint: 4 bytes for
// IPv4, 16 for IPv6.
func Bytes(addr netip.Addr) []byte {
	return addr.AsSlice()
}

// FromBytes restores an endpoint from its fixed-width binary form.
func FromBytes(raw []byte) (netip.Addr, error) {
	addr, ok := netip.AddrFromSlice(raw)
	if !ok {
		return netip.Addr{}, fmt.Errorf("invalid endpoint length %d", len(raw))
	}
	return addr, nil
}

// TitleFromBytes renders a range title directly from stored binary
// endpoints.
func TitleFromBytes(startRaw, endRaw []byte) (string, error) {
	start, err := FromBytes(startRaw)
	if err != nil {
		return "", fmt.Errorf("start endpoint: %w", err)
	}
	end, err := FromBytes(endRaw)
	if err != nil {
		return "", fmt.Errorf("end endpoint: %w", err)
	}
	return Title(start, end), nil
}
