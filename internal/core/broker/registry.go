package broker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	dialersMu sync.RWMutex
	dialers   = make(map[string]Dialer)
)

// Register makes a transport available under a target scheme. Transports register
// themselves from init, so the binary picks them up with a blank import.
func Register(scheme string, d Dialer) {
	dialersMu.Lock()
	defer dialersMu.Unlock()
	if d == nil {
		panic("broker: Register dialer is nil")
	}
	dialers[strings.ToLower(scheme)] = d
}

// Schemes lists the registered target schemes.
func Schemes() []string {
	dialersMu.RLock()
	defer dialersMu.RUnlock()
	out := make([]string, 0, len(dialers))
	for s := range dialers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Open dials target with the transport registered for its scheme.
func Open(ctx context.Context, target string, opts Options) (Client, error) {
	scheme := SchemeOf(target)
	dialersMu.RLock()
	d, ok := dialers[scheme]
	dialersMu.RUnlock()
	if !ok {
		return nil, Transport("connect", fmt.Errorf("%w %q, registered: %s",
			ErrUnknownTransport, scheme, strings.Join(Schemes(), ", ")))
	}
	c, err := d(ctx, target, opts)
	if err != nil {
		return nil, Transport("connect", err)
	}
	return c, nil
}

// SchemeOf extracts the transport scheme of a connection target. Service Bus connection
// strings ("Endpoint=sb://...;SharedAccessKeyName=...") map to "servicebus".
func SchemeOf(target string) string {
	t := strings.TrimSpace(target)
	if strings.HasPrefix(strings.ToLower(t), "endpoint=") {
		return "servicebus"
	}
	if i := strings.Index(t, "://"); i > 0 {
		return strings.ToLower(t[:i])
	}
	return ""
}
