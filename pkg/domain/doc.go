/*
Package domain contains the core domain models of the mercato conversation state machine.

It defines the per-customer Session, the three flow sub-states and the catalog entities
they refer to. This package is kept pure and free of I/O, following Hexagonal
Architecture principles: adapters and flows depend on it, never the other way around.

# Key Entities

  - Session: one per customer identifier. Holds the top-level Mode and the sub-states.
  - BrowseState, OrderState, MerchantState: flow-owned sub-states, each with a Step and
    a tagged StepData payload describing the list that was last rendered.
  - OrderDraft, ProductDraft: builders filled one step at a time and converted with Complete.
  - Category, Merchant, Product, Order: catalog records as read from the data store.
  - Inbound: a single customer-originated event (text or media).

BrowseState is intentionally kept while the session is in ModeOrdering, so the ordering
flow can hand control back to the listing the customer was viewing.
*/
package domain
