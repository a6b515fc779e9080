// Command pagedb is a small illustrative program exercising the buffer
// pool and the persistent trie together; it is not a CLI front end.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"pagedb/internal/storage/buffer"
	"pagedb/internal/storage/disk"
	"pagedb/internal/storage/logmanager"
	"pagedb/internal/trie"
	"pagedb/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	dbFile, err := os.CreateTemp("", "pagedb-demo-*.db")
	if err != nil {
		return err
	}
	defer os.Remove(dbFile.Name())
	dbFile.Close()

	fm, err := disk.NewFileManager(dbFile.Name())
	if err != nil {
		return err
	}
	defer fm.Close()

	opts := utils.DefaultOptions()
	opts.PoolSize = 4
	opts.ReplacerK = 2

	log := logmanager.NewLogrusManager(logrus.StandardLogger())
	pool := buffer.NewBufferPool(opts.PoolSize, fm, opts.ReplacerK, log)

	pageID, p := pool.NewPage()
	copy(p.Data[:], "hello from pagedb")
	pool.UnpinPage(pageID, true)
	pool.FlushPage(pageID)

	fetched := pool.FetchPage(pageID)
	fmt.Printf("page %d contents: %q\n", pageID, string(fetched.Data[:18]))
	pool.UnpinPage(pageID, false)

	tr := trie.Put(trie.New(), "greeting", "hello, trie")
	tr = trie.Put(tr, "greeting/loud", "HELLO, TRIE")
	if v, ok := trie.Get[string](tr, "greeting"); ok {
		fmt.Println(v)
	}
	tr = tr.Remove("greeting")
	if _, ok := trie.Get[string](tr, "greeting"); !ok {
		fmt.Println("greeting removed, greeting/loud still present")
	}

	return nil
}
