// Command genfallback writes the built-in demo catalog to disk so the service
// has a fallback file when NeoWs is unreachable. The format follows the file
// extension (.json, .yaml or .yml).
//
// Usage:
//
//	go run ./cmd/genfallback -out data/asteroids.json
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/neo-impact-service/internal/catalog"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the fallback catalog")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	list := catalog.Samples()
	if err := writeCatalog(*out, list); err != nil {
		return fmt.Errorf("writing fallback catalog: %w", err)
	}
	log.Printf("wrote %d asteroids to %s", len(list), *out)
	return nil
}

func writeCatalog(path string, list []catalog.Asteroid) error {
	data, err := catalog.Encode(path, list)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
