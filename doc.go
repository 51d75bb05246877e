// Package docsearch is an embeddable client for keyword search over the
// Book and Reference documentation indexes.
//
// A search turns free-text keywords into a boosted prefix/term query with
// highlighting, runs it on the configured backend and normalizes the hits
// into one envelope per category.
//
//	client, _ := docsearch.New(ctx, docsearch.WithElastic("http://localhost:9200"))
//	defer client.Close()
//
//	env, ok := client.Search(ctx, "git commit", docsearch.Reference, nil)
//	if ok {
//	    for _, m := range env.Matches {
//	        fmt.Println(m.Name, m.URL)
//	    }
//	}
//
// # Fluent queries
//
//	envs, _ := client.Query("rebase").Lang("en").Do(ctx)
//
// An in-process backend is available for tests and local development:
//
//	client, _ := docsearch.New(ctx, docsearch.WithMemory(docs...))
package docsearch
