/*
Package ports defines the driven ports (interfaces) of the mercato bot.

These interfaces decouple the conversation flows from the collaborators they talk to,
allowing the same flows to run against Airtable or an in-memory catalog, the WhatsApp
Cloud API or a console, and any session backend.

# Key Interfaces

  - SessionStore: persists and loads one Session per customer identifier.
  - DistributedLocker: serializes access to a session across replicas.
  - Messenger: the outbound messaging transport (fire-and-forget text and images).
  - Catalog: the remote tabular data store (categories, merchants, products, orders).
  - MediaHost: persists an image URL to permanent hosting.
  - MediaResolver: turns a channel media handle into a downloadable URL.
*/
package ports
