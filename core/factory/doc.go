// Package factory instantiates pluggable modules, such as metrics sinks, from
// configuration. A module is a type name plus a map of raw settings that the
// registered constructor decodes into its own struct with Decode.
package factory
