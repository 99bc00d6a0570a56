// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Every setting has a default, so an empty file yields a working
// configuration pointed at the Birmingham feeds.
package config
