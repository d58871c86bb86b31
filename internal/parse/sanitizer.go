package parse

import (
	"regexp"
	"strings"
)

var (
	privateKeyPattern   = regexp.MustCompile(`suiprivkey[a-zA-Z0-9]+`)
	longAddressPattern  = regexp.MustCompile(`0x[a-fA-F0-9]{64}`)
	mnemonicPattern     = regexp.MustCompile(`\b([a-z]+\s+){11,23}[a-z]+\b`)
	pathFragmentPattern = regexp.MustCompile(`(?:/[\w.\-]+){2,}/?`)
	spaceRunPattern     = regexp.MustCompile(`\s{2,}`)
)

// SanitizeOutput masks secret material in raw tool output: private keys,
// full-length addresses and mnemonic word runs.
func SanitizeOutput(text string) string {
	out := privateKeyPattern.ReplaceAllString(text, "****")
	out = longAddressPattern.ReplaceAllStringFunc(out, maskAddress)
	out = mnemonicPattern.ReplaceAllString(out, "[MNEMONIC]")
	return out
}

// SanitizeError shapes an error string for the caller: drop the tool's
// "Error: " prefix and any filesystem path fragments, then mask secrets.
func SanitizeError(msg string) string {
	out := strings.TrimSpace(msg)
	out = strings.TrimPrefix(out, "Error: ")
	out = pathFragmentPattern.ReplaceAllString(out, "")
	out = SanitizeOutput(out)
	out = spaceRunPattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// MaskAddress keeps the first and last four hex characters of an address.
func MaskAddress(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return maskAddress(addr)
}

func maskAddress(addr string) string {
	return "0x" + addr[2:6] + "..." + addr[len(addr)-4:]
}
