// Package discovery advertises the analyzer's control endpoint over
// mDNS/DNS-SD so a client on the same network segment can find it without
// a pre-shared address, using the pure-Go github.com/brutella/dnssd
// package for cross-platform announcement without a system daemon.
package discovery

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
)

// ServiceType is the DNS-SD service type advertised for the inspector
// control endpoint.
const ServiceType = "_suscan-inspector._tcp"

// Advertisement owns the responder goroutine announcing one service
// instance.
type Advertisement struct {
	responder dnssd.Responder
	cancel    context.CancelFunc
	done      chan struct{}
}

// Advertise registers name:port under ServiceType and starts responding
// to mDNS queries in the background. Call Close to stop.
func Advertise(name string, port int) (*Advertisement, error) {
	if name == "" {
		name = "suscan-inspector"
	}

	cfg := dnssd.Config{
		Name: name,
		Type: ServiceType,
		Port: port,
	}

	svc, err := dnssd.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery: create service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return nil, fmt.Errorf("discovery: create responder: %w", err)
	}

	if _, err := responder.Add(svc); err != nil {
		return nil, fmt.Errorf("discovery: add service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = responder.Respond(ctx)
	}()

	return &Advertisement{responder: responder, cancel: cancel, done: done}, nil
}

// Close stops responding to mDNS queries and waits for the responder
// goroutine to exit.
func (a *Advertisement) Close() {
	a.cancel()
	<-a.done
}
