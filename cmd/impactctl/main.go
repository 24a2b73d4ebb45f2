// Command impactctl evaluates the impact formulas offline and checks catalog
// files before they are deployed as the service's fallback catalog.
//
// Usage:
//
//	impactctl basic --velocity 20 --mass 1e9 --diameter 100
//	impactctl detailed --asteroid "Asteroid 3" --catalog data/asteroids.json -o yaml
//	impactctl mass --diameter 370 --density 2600
//	impactctl validate data/asteroids.json
//
// Every flag can also be set through an IMPACTCTL_ environment variable, for
// example IMPACTCTL_VELOCITY=30.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
