package service

import (
	"fmt"
	"strings"
)

// Status is the closed set of order lifecycle states. Orders start in
// StatusCart before checkout and StatusPlaced after; StatusClosed and
// StatusCancelled are terminal.
type Status string

const (
	StatusCart              Status = "cart"
	StatusPlaced            Status = "placed"
	StatusKitchenInProgress Status = "kitchen_in_progress"
	StatusKitchenDone       Status = "kitchen_done"
	StatusReadyToClose      Status = "ready_to_close"
	StatusAssignedToCourier Status = "assigned_to_courier"
	StatusOnTheWay          Status = "on_the_way"
	StatusDelivered         Status = "delivered"
	StatusClosed            Status = "closed"
	StatusCancelled         Status = "cancelled"
)

// OrderType selects which transition graph governs an order.
type OrderType string

const (
	TypeDineIn   OrderType = "dine_in"
	TypeTakeaway OrderType = "takeaway"
	TypeDelivery OrderType = "delivery"
)

// UnknownStatusError reports an input that matches neither a canonical status
// nor a known alias.
type UnknownStatusError struct {
	Raw string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown order status %q", e.Raw)
}

// InvalidTransitionError reports a status edge absent from the order type's
// transition graph.
type InvalidTransitionError struct {
	From Status
	To   Status
	Type OrderType
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move a %s order from %s to %s", e.Type, e.From, e.To)
}

// UnknownOrderTypeError reports an order type outside the closed set.
type UnknownOrderTypeError struct {
	Raw string
}

func (e *UnknownOrderTypeError) Error() string {
	return fmt.Sprintf("unknown order type %q", e.Raw)
}

var canonicalStatuses = map[Status]struct{}{
	StatusCart:              {},
	StatusPlaced:            {},
	StatusKitchenInProgress: {},
	StatusKitchenDone:       {},
	StatusReadyToClose:      {},
	StatusAssignedToCourier: {},
	StatusOnTheWay:          {},
	StatusDelivered:         {},
	StatusClosed:            {},
	StatusCancelled:         {},
}

// statusAliases maps legacy spellings (already lowercased with separators
// collapsed to underscores) onto canonical statuses. Upstream systems and
// old documents disagree on casing and wording; resolution happens once here.
var statusAliases = map[string]Status{
	"inprogress":  StatusKitchenInProgress,
	"in_progress": StatusKitchenInProgress,
	"ready":       StatusReadyToClose,
	"completed":   StatusClosed,
	"complete":    StatusClosed,
	"done":        StatusClosed,
}

// NormalizeStatus resolves raw into a canonical Status, case-insensitively
// and accepting dash or space separators. Returns UnknownStatusError for
// anything outside the canonical set and the alias table.
func NormalizeStatus(raw string) (Status, error) {
	folded := strings.ToLower(strings.TrimSpace(raw))
	folded = strings.ReplaceAll(folded, "-", "_")
	folded = strings.ReplaceAll(folded, " ", "_")

	if _, ok := canonicalStatuses[Status(folded)]; ok {
		return Status(folded), nil
	}
	if canonical, ok := statusAliases[folded]; ok {
		return canonical, nil
	}
	return "", &UnknownStatusError{Raw: raw}
}

// ParseOrderType resolves raw into an OrderType, case-insensitively.
func ParseOrderType(raw string) (OrderType, error) {
	folded := strings.ToLower(strings.TrimSpace(raw))
	folded = strings.ReplaceAll(folded, "-", "_")
	switch OrderType(folded) {
	case TypeDineIn, TypeTakeaway, TypeDelivery:
		return OrderType(folded), nil
	default:
		return "", &UnknownOrderTypeError{Raw: raw}
	}
}

// kitchenGraph governs dine_in and takeaway orders; courierGraph governs
// delivery orders. delivered has no cancellation edge: cancelling after the
// food arrived is handled out of band, never through the status machine.
var kitchenGraph = map[Status][]Status{
	StatusCart:              {StatusPlaced},
	StatusPlaced:            {StatusKitchenInProgress, StatusCancelled},
	StatusKitchenInProgress: {StatusKitchenDone, StatusCancelled},
	StatusKitchenDone:       {StatusReadyToClose, StatusCancelled},
	StatusReadyToClose:      {StatusClosed, StatusCancelled},
}

var courierGraph = map[Status][]Status{
	StatusCart:              {StatusPlaced},
	StatusPlaced:            {StatusKitchenInProgress, StatusCancelled},
	StatusKitchenInProgress: {StatusKitchenDone, StatusCancelled},
	StatusKitchenDone:       {StatusAssignedToCourier, StatusCancelled},
	StatusAssignedToCourier: {StatusOnTheWay, StatusCancelled},
	StatusOnTheWay:          {StatusDelivered, StatusCancelled},
	StatusDelivered:         {StatusClosed},
}

func graphFor(t OrderType) map[Status][]Status {
	switch t {
	case TypeDineIn, TypeTakeaway:
		return kitchenGraph
	case TypeDelivery:
		return courierGraph
	}
	return nil
}

// CanTransition reports whether (current, next) is an edge in the transition
// graph for the given order type. This is the sole authority over status
// mutation; callers reject illegal transitions rather than coerce them.
func CanTransition(current, next Status, t OrderType) bool {
	graph := graphFor(t)
	if graph == nil {
		return false
	}
	for _, allowed := range graph[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses returns the legal targets from current for the given order
// type, in graph order. Empty for terminal states and unknown types.
func NextStatuses(current Status, t OrderType) []Status {
	graph := graphFor(t)
	if graph == nil {
		return nil
	}
	out := make([]Status, len(graph[current]))
	copy(out, graph[current])
	return out
}

// IsTerminal reports whether no outgoing transition exists for any order type.
func IsTerminal(s Status) bool {
	return s == StatusClosed || s == StatusCancelled
}
