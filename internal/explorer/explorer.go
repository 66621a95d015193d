package explorer

import "strings"

const DefaultBaseURL = "https://goerli.etherscan.io/address/"

// Explorer builds block-explorer links from a static URL template.
type Explorer struct {
	base string
}

func New(base string) Explorer {
	if strings.TrimSpace(base) == "" {
		base = DefaultBaseURL
	}

	return Explorer{base: base}
}

func (e Explorer) AddressURL(address string) string {
	if address == "" {
		return ""
	}

	return e.base + address
}
