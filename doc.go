// Package tardissearch is an embeddable client for the MyTardis search
// service. It runs the same pipeline as the HTTP server: plan the query,
// dispatch it to Redis Search, classify the hits and drop everything the
// principal may not read.
//
//	client, _ := tardissearch.New(
//		tardissearch.WithRedis("localhost:6379"),
//		tardissearch.WithTimeZone("Australia/Melbourne"),
//	)
//	defer client.Close()
//
//	res, _ := client.Search(ctx, "u1", "cryo microscope")
//	for _, h := range res.Experiments {
//		fmt.Println(h.ID, h.Fields["title"])
//	}
package tardissearch
