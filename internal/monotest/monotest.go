// Package monotest runs mono request-reply services and events in process
// so module handlers can be tested through their adapters without NATS.
package monotest

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-monolith/mono"
)

// Container serves request-reply services registered through the mono
// helpers. Methods other than RegisterRequestReplyService and
// GetRequestReplyService are not implemented and panic when called.
type Container struct {
	mono.ServiceContainer

	mu       sync.RWMutex
	handlers map[string]mono.RequestReplyHandler
}

func NewContainer() *Container {
	return &Container{handlers: make(map[string]mono.RequestReplyHandler)}
}

func (c *Container) RegisterRequestReplyService(name string, handler mono.RequestReplyHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.handlers[name]; ok {
		return fmt.Errorf("service %q already registered", name)
	}
	c.handlers[name] = handler
	return nil
}

func (c *Container) GetRequestReplyService(name string) (mono.RequestReplyServiceClient, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	handler, ok := c.handlers[name]
	if !ok {
		return nil, fmt.Errorf("service %q not found", name)
	}
	return client{subject: "services." + name, handler: handler}, nil
}

type client struct {
	subject string
	handler mono.RequestReplyHandler
}

func (c client) Call(ctx context.Context, data []byte) (*mono.Msg, error) {
	return c.CallMsg(ctx, &mono.Msg{Subject: c.subject, Data: data})
}

func (c client) CallMsg(ctx context.Context, msg *mono.Msg) (*mono.Msg, error) {
	resp, err := c.handler(ctx, msg)
	if err != nil {
		return nil, err
	}
	return &mono.Msg{Subject: msg.Reply, Data: resp}, nil
}

// Bus records published events and delivers them synchronously to the
// consumers registered through Registry. Only PublishMsg is implemented.
type Bus struct {
	mono.EventBus

	mu        sync.Mutex
	published []*mono.Msg
	consumers map[string][]mono.EventConsumerHandler
}

func NewBus() *Bus {
	return &Bus{consumers: make(map[string][]mono.EventConsumerHandler)}
}

func (b *Bus) PublishMsg(msg *mono.Msg) error {
	b.mu.Lock()
	b.published = append(b.published, msg)
	handlers := b.consumers[msg.Subject]
	b.mu.Unlock()

	for _, h := range handlers {
		if err := h(context.Background(), msg); err != nil {
			return fmt.Errorf("consumer of %s failed: %w", msg.Subject, err)
		}
	}
	return nil
}

// Published returns the messages sent on subject, oldest first.
func (b *Bus) Published(subject string) []*mono.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*mono.Msg
	for _, msg := range b.published {
		if msg.Subject == subject {
			out = append(out, msg)
		}
	}
	return out
}

// Registry returns an event registry whose consumers receive this bus's events.
func (b *Bus) Registry() mono.EventRegistry {
	return &registry{bus: b}
}

type registry struct {
	mono.EventRegistry
	bus *Bus
}

func (r *registry) RegisterEventConsumer(def mono.BaseEventDefinition, handler mono.EventConsumerHandler, _ mono.Module, _ ...string) error {
	r.bus.mu.Lock()
	defer r.bus.mu.Unlock()
	r.bus.consumers[def.Subject] = append(r.bus.consumers[def.Subject], handler)
	return nil
}
