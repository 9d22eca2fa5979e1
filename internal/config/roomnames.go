package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/samirwankhede/roomstats/internal/analytics"
)

type roomEntry struct {
	Vendor  string `mapstructure:"vendor"`
	Display string `mapstructure:"display"`
}

// LoadRoomNames returns the vendor-to-display room table. Without a file the built-in
// table is used; a file (yaml, json or toml) extends and overrides it:
//
//	rooms:
//	  - vendor: "4번 스터디룸"
//	    display: "6인 세미나룸"
//
// Rooms are a list rather than a map because viper lowercases map keys.
func LoadRoomNames(path string) (map[string]string, error) {
	rooms := analytics.DefaultRoomNames()
	if path == "" {
		return rooms, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read room names %s: %w", path, err)
	}
	var entries []roomEntry
	if err := v.UnmarshalKey("rooms", &entries); err != nil {
		return nil, fmt.Errorf("parse room names %s: %w", path, err)
	}
	for _, e := range entries {
		if e.Vendor == "" || e.Display == "" {
			return nil, fmt.Errorf("room names %s: entry needs vendor and display", path)
		}
		rooms[e.Vendor] = e.Display
	}
	return rooms, nil
}
