package service

import (
	"testing"
)

func TestEventBusNotifiesInRegistrationOrder(t *testing.T) {
	bus := NewEventBus()

	var order []string
	bus.Register(func(uint) { order = append(order, "a") })
	bus.Register(func(uint) { order = append(order, "b") })
	bus.Register(func(uint) { order = append(order, "c") })

	bus.Notify(1)

	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("order = %v, want [a b c]", order)
	}
}

func TestEventBusUnregister(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	id := bus.Register(func(uint) { calls++ })
	bus.Register(func(uint) { calls += 10 })

	bus.Notify(1)
	bus.Unregister(id)
	bus.Notify(1)

	if calls != 21 {
		t.Errorf("calls = %d, want 21", calls)
	}
}

func TestEventBusIsolatesPanics(t *testing.T) {
	bus := NewEventBus()

	var reached []uint
	bus.Register(func(uint) { panic("listener blew up") })
	bus.Register(func(userID uint) { reached = append(reached, userID) })

	bus.Notify(7)

	if len(reached) != 1 || reached[0] != 7 {
		t.Errorf("second listener not reached after panic, got %v", reached)
	}
}

func TestEventBusPassesUserID(t *testing.T) {
	bus := NewEventBus()

	var got uint
	bus.Register(func(userID uint) { got = userID })
	bus.Notify(42)

	if got != 42 {
		t.Errorf("userID = %d, want 42", got)
	}
}
