package policy

import (
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/spf13/cast"
)

// LoadJSON reads a declarative policy file:
//
//	{"inbound": "ip6 proto \\tcp", "outbound": "ip6 multicast"}
//
// and returns the two BPF expressions to compile via bpfproc.New. This
// is additive to the hard-coded/BPF-flag/script entry-point shapes: a
// fourth way to configure brilter without touching the binary's flags.
func LoadJSON(data []byte) (inbound, outbound string, err error) {
	inbound, err = stringField(data, "inbound")
	if err != nil {
		return "", "", err
	}
	outbound, err = stringField(data, "outbound")
	if err != nil {
		return "", "", err
	}
	return inbound, outbound, nil
}

func stringField(data []byte, key string) (string, error) {
	if s, err := jsonparser.GetString(data, key); err == nil {
		return s, nil
	}

	// Field present but not a JSON string (number, bool): coerce
	// defensively rather than reject outright.
	raw, _, _, err := jsonparser.Get(data, key)
	if err != nil {
		return "", fmt.Errorf("policy: missing %q field: %w", key, err)
	}
	return cast.ToStringE(string(raw))
}
