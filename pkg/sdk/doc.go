// Package homedex provides an instrumented Go client for browsing
// paginated real-estate listings served by a Hound search backend.
//
// Each Browser is one interactive session: a pagination controller over
// a windowed cache of backend batches. Pages already fetched render
// instantly, pages near the cache edge are prefetched in the
// background, and client-side filters re-slice the cache without
// touching the backend.
//
// # Basic usage
//
//	client, _ := homedex.New(ctx,
//	    homedex.WithHoundAPI("http://hound:9100", apiKey),
//	)
//	defer client.Close()
//
//	b := client.NewBrowser()
//	view, _ := b.Search(ctx, "2bhk indiranagar", nil)
//	view, _ = b.Next(ctx)
//	view, _ = b.Refine(homedex.Filters{Location: "Whitefield"})
//
// # Observability
//
//	client, _ := homedex.New(ctx,
//	    homedex.WithHoundAPI("http://hound:9100", apiKey),
//	    homedex.WithLogger(slog.Default()),
//	    homedex.WithPrometheus(prometheus.DefaultRegisterer),
//	)
package homedex
