package live

import (
	"errors"
	"net"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestBrowseDeliversBeforeReturning(t *testing.T) {
	orig := lookup
	t.Cleanup(func() { lookup = orig })

	lookupErr := errors.New("interface down")
	lookup = func(service string, entries chan<- *mdns.ServiceEntry) error {
		if service != serviceType {
			t.Errorf("service = %q", service)
		}
		entries <- &mdns.ServiceEntry{AddrV4: net.IPv4(192, 168, 1, 20), Port: 8090}
		entries <- &mdns.ServiceEntry{Port: 8090}
		entries <- &mdns.ServiceEntry{AddrV4: net.IPv4(10, 0, 0, 2), Port: 9000}
		return lookupErr
	}

	var got []string
	err := Browse(func(addr string) { got = append(got, addr) })
	if !errors.Is(err, lookupErr) {
		t.Errorf("err = %v", err)
	}
	// Read without synchronisation: Browse must have waited for delivery.
	if len(got) != 2 || got[0] != "192.168.1.20:8090" || got[1] != "10.0.0.2:9000" {
		t.Errorf("found = %v", got)
	}
}
