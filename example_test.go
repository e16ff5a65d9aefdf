package idcache_test

import (
	"encoding/json"
	"fmt"

	idcache "github.com/exists-forall/id-cache"
)

type WordID uint32

func Example() {
	words := idcache.New[WordID, string]()

	foo := words.MakeID("foo")
	bar := words.MakeID("bar")

	fmt.Println(foo, bar, words.MakeID("foo"))
	fmt.Println(words.Get(foo), words.Get(bar), words.Len())
	// Output:
	// 0 1 0
	// foo bar 2
}

func ExampleCache_Lookup() {
	words := idcache.New[WordID, string]()
	words.MakeID("foo")

	id, ok := words.Lookup("foo")
	fmt.Println(id, ok)
	_, ok = words.Lookup("bar")
	fmt.Println(ok)
	// Output:
	// 0 true
	// false
}

func ExampleCache_All() {
	words := idcache.New[WordID, string]()
	for _, w := range []string{"to", "be", "or", "not", "to", "be"} {
		words.MakeID(w)
	}
	for id, w := range words.All() {
		fmt.Println(id, w)
	}
	// Output:
	// 0 to
	// 1 be
	// 2 or
	// 3 not
}

func ExampleCache_MarshalJSON() {
	words := idcache.New[WordID, string]()
	words.MakeID("foo")
	words.MakeID("bar")

	b, _ := json.Marshal(words)
	fmt.Println(string(b))

	var restored idcache.Cache[WordID, string]
	_ = json.Unmarshal(b, &restored)
	fmt.Println(restored.Get(1))
	// Output:
	// ["foo","bar"]
	// bar
}
