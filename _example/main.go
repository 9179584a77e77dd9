package main

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/entdb/blobstore"
	"github.com/hupe1980/entdb/ent"
	"github.com/hupe1980/entdb/memory"
	"github.com/hupe1980/entdb/query"
	"github.com/hupe1980/entdb/snapshot"
	"github.com/hupe1980/entdb/value"
)

func main() {
	ctx := context.Background()
	db := memory.New()

	fmt.Println("--- Insert ---")

	author, err := ent.NewBuilder("person").
		Field("name", value.Text("ada")).
		ImmutableField("handle", value.Text("@ada")).
		Build()
	if err != nil {
		log.Fatal(err)
	}
	authorID, err := db.Insert(ctx, author)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("author id:", authorID)

	titles := []string{"drafts and sketches", "release notes", "roadmap"}
	for i, title := range titles {
		note, err := ent.NewBuilder("note").
			Field("title", value.Text(title)).
			Field("views", value.Int(int64(i*100))).
			Edge("author", ent.One(authorID)).
			Build()
		if err != nil {
			log.Fatal(err)
		}
		if _, err := db.Insert(ctx, note); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Println("--- Query ---")

	q := query.New().
		HasType("note").
		Where("views", query.Gt(value.Int(50))).
		OrderBy("views").
		Descending()
	notes, err := db.FindAll(ctx, q)
	if err != nil {
		log.Fatal(err)
	}
	for _, n := range notes {
		title, _ := n.Field("title")
		views, _ := n.Field("views")
		fmt.Printf("%v (views=%v)\n", title.S, views.I64)
	}

	fmt.Println("--- Edges ---")

	loaded, err := notes[0].LoadEdge(ctx, db, "author")
	if err != nil {
		log.Fatal(err)
	}
	name, _ := loaded[0].Field("name")
	fmt.Println("written by:", name.S)

	fmt.Println("--- Snapshot ---")

	store := blobstore.NewMemoryStore()
	m, err := snapshot.Save(ctx, db, store, "demo")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("saved %d ents (%s/%s)\n", m.Count, m.Codec, m.Compression)

	restored := memory.New()
	n, err := snapshot.Restore(ctx, restored, store, "demo")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("restored:", n)

	fmt.Println("--- Cascade ---")

	if _, err := db.Remove(ctx, authorID); err != nil {
		log.Fatal(err)
	}
	note, err := db.Get(ctx, notes[0].ID())
	if err != nil {
		log.Fatal(err)
	}
	edge, _ := note.Edge("author")
	fmt.Println("author edge after remove:", edge.Kind)
}
