// Package geo resolves listener locations from a MaxMind database.
package geo

import (
	"fmt"
	"log"
	"net/netip"
	"sync"

	"github.com/oschwald/maxminddb-golang/v2"
)

// cityRecord is the subset of GeoLite2-City/Country we decode.
type cityRecord struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Country struct {
		ISOCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
}

// DB is a read-only MaxMind database. A nil *DB resolves nothing.
type DB struct {
	mu     sync.RWMutex
	reader *maxminddb.Reader
}

func Open(path string) (*DB, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geoip database %s: %w", path, err)
	}
	log.Printf("🌍 GeoIP database loaded (%s)", reader.Metadata.DatabaseType)
	return &DB{reader: reader}, nil
}

// Location returns "City, Country", "Country" or "" when addr is unknown.
func (db *DB) Location(addr netip.Addr) string {
	if db == nil || !addr.IsValid() {
		return ""
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.reader == nil {
		return ""
	}

	var rec cityRecord
	if err := db.reader.Lookup(addr.Unmap()).Decode(&rec); err != nil {
		return ""
	}
	return formatLocation(rec)
}

func formatLocation(rec cityRecord) string {
	country := rec.Country.Names["en"]
	if country == "" {
		country = rec.Country.ISOCode
	}
	city := rec.City.Names["en"]
	switch {
	case city != "" && country != "":
		return city + ", " + country
	case country != "":
		return country
	}
	return city
}

func (db *DB) Close() error {
	if db == nil {
		return nil
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.reader == nil {
		return nil
	}
	err := db.reader.Close()
	db.reader = nil
	return err
}
