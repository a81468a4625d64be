// Package config loads service configuration with Viper.
//
// Values come from an optional config.yml, an optional .env file, and the
// process environment, in increasing precedence. Environment variables map
// onto nested keys by splitting on underscores (STORE_URI -> store.uri), and
// aliases let well-known platform variables (PORT, MONGODB_URI) feed a key.
package config
