/*
Package mercato is a conversational commerce bot for WhatsApp-style messaging channels.

Customers browse a remote product catalog (category, district, shop and product, or by
location and free-text search), place orders and check on them, and registered shop
owners add products to the catalog, all by replying with numbers and short texts.

# Concept

Every customer has one Session. Each inbound event is routed by the Dispatcher to one
of three flows (catalog discovery, ordering, merchant onboarding), each a small state
machine over its own sub-state. A listing records the step data it was rendered from,
so the next numeric reply is decoded against exactly what the customer saw.

The bot talks to the outside world through ports: a catalog store (Airtable or in
memory), a messenger (the WhatsApp Cloud API or a console), a media resolver and a
media host (Cloudinary).

# Usage

	catalog := memory.DemoCatalog()
	bot, err := mercato.New(catalog, memory.NewConsole(os.Stdout))
	if err != nil {
		log.Fatal(err)
	}
	bot.Handle(ctx, "265881234567", "hi")

To serve the webhook:

	http.ListenAndServe(":8080", bot.Handler(httpadapter.WithVerifyToken(token)))

# Stores

Sessions default to process memory. memory.NewCacheStore expires idle sessions, the
file adapter keeps one JSON document per customer on disk, the redis adapter survives
restarts and shares sessions between replicas (pair it with WithLocker), and
middleware.NewEncryptionMiddleware seals them at rest.
*/
package mercato
