// Package order contains the order aggregate and its lifecycle state machine.
//
// The status enum has nine members; NEW is initial and DELIVERED, REJECTED,
// CANCELED_BY_USER and CANCELED_BY_VENDOR are terminal. NextStatus is a pure
// lookup over the transition table: it performs no I/O and has no side effects
// beyond returning the next legal status or an error. Who may trigger each
// edge is part of the table; whether the actor's relation to the order permits
// it (owner, vendor membership, courier lease) is the access policy's concern.
package order
