package main

// Options are the command line flags. Struct tags are interpreted by
// github.com/jessevdk/go-flags. Set flags override the config file.
type Options struct {
	Config   string `short:"f" long:"config" description:"config file path (TOML)"`
	Route    string `short:"r" long:"route" description:"initial route, e.g. /explore;x=144.96;y=-37.81;z=14"`
	Features string `long:"features" description:"GeoJSON feature collection, file path or http(s) URL"`
	LogLevel string `long:"log-level" description:"debug, info, warn or error"`
}
