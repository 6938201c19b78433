package policy

// Literal BPF expressions equivalent in intent to Default, for callers
// that want to drive bpfproc instead of the native Default predicate.
//
// The /112 prefix below is preserved verbatim from the original filter
// strings; the semantic intent of the source is /10 (the link-local
// prefix), which is what Default implements natively. Kept literal
// here rather than "corrected" so a caller diffing against a known-good
// capture gets the same matches the original program produced.
const (
	baseFilter = `(ip6 src net fe80::/112 and ip6 dst net fe80::/112) ` +
		`|| (ip6 multicast) ` +
		`|| (icmp6)`

	// DefaultInboundFilter is the BPF expression for inbound traffic.
	DefaultInboundFilter = `(` + baseFilter + ` || ` +
		`((ip6 proto \tcp) && (!(tcp[tcpflags] & (tcp-syn|tcp-ack) == tcp-syn) || (tcp dst port 22))))`

	// DefaultOutboundFilter is the BPF expression for outbound traffic.
	DefaultOutboundFilter = `(` + baseFilter + ` || (ip6 proto \tcp))`
)
