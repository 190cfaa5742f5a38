package live

import (
	"fmt"
	"os"

	"github.com/hashicorp/mdns"
)

const serviceType = "_shirtforge._tcp"

// Advertise announces the session on the local network until the returned
// server is shut down.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("live: hostname: %w", err)
	}
	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, []string{"shirtforge design session", "path=/ws"})
	if err != nil {
		return nil, fmt.Errorf("live: mdns service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("live: mdns server: %w", err)
	}
	return server, nil
}

// lookup is the mDNS query Browse runs.
var lookup = mdns.Lookup

// Browse reports every advertised session address until the lookup ends.
// found is not called after Browse returns.
func Browse(found func(addr string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(fmt.Sprintf("%s:%d", e.AddrV4, e.Port))
		}
	}()
	err := lookup(serviceType, entries)
	close(entries)
	<-done
	return err
}
