package types

// Version is the relwatch version, overwritten at build time via -ldflags.
var Version = "dev"
